package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps each region in a bounded, expiring LRU.
type MemoryStore struct {
	regions map[Region]*expirable.LRU[Key, []byte]

	genMu       sync.RWMutex
	generations map[string]uint64
}

// NewMemoryStore builds one LRU per region.
func NewMemoryStore(policies Policies) (*MemoryStore, error) {
	if err := policies.Validate(); err != nil {
		return nil, err
	}
	regions := make(map[Region]*expirable.LRU[Key, []byte], len(Regions))
	for _, region := range Regions {
		p := policies[region]
		regions[region] = expirable.NewLRU[Key, []byte](p.Capacity, nil, p.TTL)
	}
	return &MemoryStore{regions: regions, generations: make(map[string]uint64)}, nil
}

func (s *MemoryStore) region(region Region) (*expirable.LRU[Key, []byte], error) {
	lru, ok := s.regions[region]
	if !ok {
		return nil, fmt.Errorf("cache: unknown region %q", region)
	}
	return lru, nil
}

func (s *MemoryStore) Get(_ context.Context, region Region, key Key) ([]byte, bool, error) {
	lru, err := s.region(region)
	if err != nil {
		return nil, false, err
	}
	val, ok := lru.Get(key)
	return val, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, region Region, key Key, value []byte) error {
	lru, err := s.region(region)
	if err != nil {
		return err
	}
	lru.Add(key, value)
	return nil
}

func (s *MemoryStore) PutIfGeneration(_ context.Context, region Region, key Key, value []byte, generation uint64) (bool, error) {
	lru, err := s.region(region)
	if err != nil {
		return false, err
	}
	// Holding the read lock across Add keeps Bump from slipping in between the check and the write.
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	if s.generations[key.Principal] != generation {
		return false, nil
	}
	lru.Add(key, value)
	return true, nil
}

func (s *MemoryStore) Evict(_ context.Context, region Region, key Key) error {
	lru, err := s.region(region)
	if err != nil {
		return err
	}
	lru.Remove(key)
	return nil
}

func (s *MemoryStore) EvictAll(_ context.Context, region Region) error {
	lru, err := s.region(region)
	if err != nil {
		return err
	}
	lru.Purge()
	return nil
}

func (s *MemoryStore) Generation(_ context.Context, principal string) (uint64, error) {
	s.genMu.RLock()
	defer s.genMu.RUnlock()
	return s.generations[principal], nil
}

func (s *MemoryStore) Bump(_ context.Context, principal string) (uint64, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.generations[principal]++
	return s.generations[principal], nil
}

var _ Store = (*MemoryStore)(nil)
