package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
)

// redisCmdable is the subset of the redis client used by redisStore.
type redisCmdable interface {
	TxPipeline() redis.Pipeliner
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Close() error
}

// redisStore keeps the newest outcomes in a capped redis list.
type redisStore struct {
	rdb         redisCmdable
	key         string
	historySize int64
	outcomeTTL  time.Duration
}

func openRedis(addr string, opts Options) (Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return newRedisStore(rdb, opts), nil
}

func newRedisStore(rdb redisCmdable, opts Options) *redisStore {
	return &redisStore{
		rdb:         rdb,
		key:         opts.RedisKey,
		historySize: opts.HistorySize,
		outcomeTTL:  opts.OutcomeTTL,
	}
}

// Close closes the redis client.
func (r *redisStore) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

// Record pushes the outcome, trims the list to the history size and refreshes its expiry.
func (r *redisStore) Record(ctx context.Context, o domain.Outcome) error {
	entry := NewEntry(o, r.outcomeTTL)
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.LPush(ctx, r.key, payload)
	pipe.LTrim(ctx, r.key, 0, r.historySize-1)
	pipe.Expire(ctx, r.key, r.outcomeTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record outcome in redis: %w", err)
	}
	return nil
}

// History returns up to limit unexpired entries, newest first.
func (r *redisStore) History(ctx context.Context, limit int) ([]Entry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := r.rdb.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read redis history: %w", err)
	}
	return decodeEntries(raw, time.Now()), nil
}

// decodeEntries skips malformed and expired items.
func decodeEntries(raw []string, now time.Time) []Entry {
	out := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		if !entry.ExpiresAt.After(now) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
