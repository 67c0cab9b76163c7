package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces keys when no prefix is configured.
const DefaultKeyPrefix = "kwpager"

// RedisKeywords stores each keyword as a Redis set of subscriber ids.
//
// Key pattern:
//
//	{prefix}:keywords         set of every keyword ever subscribed to
//	{prefix}:keyword:{name}   set of subscriber ids
//
// Redis drops a set when its last member is removed, so document existence
// is tracked by the index set instead.
type RedisKeywords struct {
	*RedisStore
	prefix string
}

func NewRedisKeywords(rs *RedisStore, prefix string) *RedisKeywords {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisKeywords{RedisStore: rs, prefix: prefix}
}

func (s *RedisKeywords) indexKey() string {
	return fmt.Sprintf("%s:keywords", s.prefix)
}

func (s *RedisKeywords) keywordKey(keyword string) string {
	return fmt.Sprintf("%s:keyword:%s", s.prefix, keyword)
}

// Get returns the keyword's subscribers sorted by id.
func (s *RedisKeywords) Get(ctx context.Context, keyword string) ([]string, bool, error) {
	var (
		exists  *redis.BoolCmd
		members *redis.StringSliceCmd
	)
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		exists = pipe.SIsMember(ctx, s.indexKey(), keyword)
		members = pipe.SMembers(ctx, s.keywordKey(keyword))
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("reading keyword: %w", err)
	}

	if !exists.Val() {
		return nil, false, nil
	}

	subs := members.Val()
	sort.Strings(subs)
	return subs, true, nil
}

// UnionSubscriber registers the keyword and adds the subscriber in one
// MULTI/EXEC block.
func (s *RedisKeywords) UnionSubscriber(ctx context.Context, keyword, subscriberID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.indexKey(), keyword)
		pipe.SAdd(ctx, s.keywordKey(keyword), subscriberID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding subscriber: %w", err)
	}
	return nil
}

func (s *RedisKeywords) RemoveSubscriber(ctx context.Context, keyword, subscriberID string) error {
	if err := s.client.SRem(ctx, s.keywordKey(keyword), subscriberID).Err(); err != nil {
		return fmt.Errorf("removing subscriber: %w", err)
	}
	return nil
}
