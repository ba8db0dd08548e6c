package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errGenerationMoved = errors.New("cache: generation moved")

// RedisStore keeps regions in Redis. Values are plain keys with an expiry; each region
// also has a sorted set of its keys scored by insertion time, trimmed to capacity.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	policies Policies
	now      func() time.Time
}

// NewRedisStore wraps client. Keys are namespaced under prefix.
func NewRedisStore(client redis.UniversalClient, prefix string, policies Policies) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("cache: redis client required")
	}
	if err := policies.Validate(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "taskcache"
	}
	return &RedisStore{client: client, prefix: prefix, policies: policies, now: time.Now}, nil
}

func (s *RedisStore) policy(region Region) (Policy, error) {
	p, ok := s.policies[region]
	if !ok {
		return Policy{}, fmt.Errorf("cache: unknown region %q", region)
	}
	return p, nil
}

func (s *RedisStore) valueKey(region Region, key Key) string {
	return s.prefix + ":" + string(region) + ":" + url.QueryEscape(key.Principal) + ":" + key.Shape
}

func (s *RedisStore) indexKey(region Region) string {
	return s.prefix + ":idx:" + string(region)
}

func (s *RedisStore) generationKey(principal string) string {
	return s.prefix + ":gen:" + url.QueryEscape(principal)
}

func (s *RedisStore) Get(ctx context.Context, region Region, key Key) ([]byte, bool, error) {
	if _, err := s.policy(region); err != nil {
		return nil, false, err
	}
	payload, err := s.client.Get(ctx, s.valueKey(region, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

func (s *RedisStore) Put(ctx context.Context, region Region, key Key, value []byte) error {
	p, err := s.policy(region)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.queueWrite(ctx, pipe, region, key, value, p)
		return nil
	})
	if err != nil {
		return err
	}
	return s.trim(ctx, region, p)
}

func (s *RedisStore) PutIfGeneration(ctx context.Context, region Region, key Key, value []byte, generation uint64) (bool, error) {
	p, err := s.policy(region)
	if err != nil {
		return false, err
	}
	genKey := s.generationKey(key.Principal)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, genKey)
		if err != nil {
			return err
		}
		if current != generation {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.queueWrite(ctx, pipe, region, key, value, p)
			return nil
		})
		return err
	}, genKey)

	switch {
	case errors.Is(err, errGenerationMoved), errors.Is(err, redis.TxFailedErr):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, s.trim(ctx, region, p)
}

func (s *RedisStore) queueWrite(ctx context.Context, pipe redis.Pipeliner, region Region, key Key, value []byte, p Policy) {
	vk := s.valueKey(region, key)
	pipe.Set(ctx, vk, value, p.TTL)
	pipe.ZAdd(ctx, s.indexKey(region), redis.Z{Score: float64(s.now().UnixMicro()), Member: vk})
}

// trim drops index entries older than the TTL, then evicts the oldest keys beyond capacity.
func (s *RedisStore) trim(ctx context.Context, region Region, p Policy) error {
	idx := s.indexKey(region)
	cutoff := s.now().Add(-p.TTL).UnixMicro()
	if err := s.client.ZRemRangeByScore(ctx, idx, "-inf", "("+strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return err
	}
	size, err := s.client.ZCard(ctx, idx).Result()
	if err != nil {
		return err
	}
	over := size - int64(p.Capacity)
	if over <= 0 {
		return nil
	}
	oldest, err := s.client.ZPopMin(ctx, idx, over).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(oldest))
	for _, z := range oldest {
		if member, ok := z.Member.(string); ok {
			keys = append(keys, member)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) Evict(ctx context.Context, region Region, key Key) error {
	if _, err := s.policy(region); err != nil {
		return err
	}
	vk := s.valueKey(region, key)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, vk)
		pipe.ZRem(ctx, s.indexKey(region), vk)
		return nil
	})
	return err
}

func (s *RedisStore) EvictAll(ctx context.Context, region Region) error {
	if _, err := s.policy(region); err != nil {
		return err
	}
	idx := s.indexKey(region)
	members, err := s.client.ZRange(ctx, idx, 0, -1).Result()
	if err != nil {
		return err
	}
	return s.client.Del(ctx, append(members, idx)...).Err()
}

func (s *RedisStore) Generation(ctx context.Context, principal string) (uint64, error) {
	return readGeneration(ctx, s.client, s.generationKey(principal))
}

func (s *RedisStore) Bump(ctx context.Context, principal string) (uint64, error) {
	next, err := s.client.Incr(ctx, s.generationKey(principal)).Result()
	if err != nil {
		return 0, err
	}
	return uint64(next), nil
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, c stringGetter, key string) (uint64, error) {
	gen, err := c.Get(ctx, key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

var _ Store = (*RedisStore)(nil)
