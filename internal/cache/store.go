package cache

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a region.
type Policy struct {
	Capacity int
	TTL      time.Duration
}

// Policies maps every region to its bounds.
type Policies map[Region]Policy

// Validate ensures every region has positive bounds.
func (p Policies) Validate() error {
	for _, region := range Regions {
		policy, ok := p[region]
		if !ok {
			return fmt.Errorf("cache: missing policy for region %q", region)
		}
		if policy.Capacity <= 0 || policy.TTL <= 0 {
			return fmt.Errorf("cache: region %q needs positive capacity and ttl", region)
		}
	}
	return nil
}

// Store holds encoded cache values. Implementations must be safe for concurrent use.
//
// Each principal has a generation counter. Bump advances it; PutIfGeneration only
// writes when the counter still equals the value the caller observed, so a
// read-through started before an invalidation cannot repopulate stale data after it.
type Store interface {
	Get(ctx context.Context, region Region, key Key) ([]byte, bool, error)
	Put(ctx context.Context, region Region, key Key, value []byte) error
	PutIfGeneration(ctx context.Context, region Region, key Key, value []byte, generation uint64) (bool, error)
	Evict(ctx context.Context, region Region, key Key) error
	EvictAll(ctx context.Context, region Region) error
	Generation(ctx context.Context, principal string) (uint64, error)
	Bump(ctx context.Context, principal string) (uint64, error)
}
