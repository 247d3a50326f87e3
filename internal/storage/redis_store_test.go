package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
)

type lrangeCall struct {
	key         string
	start, stop int64
}

// fakeRedis keeps lists in memory and applies pipelined commands on Exec.
type fakeRedis struct {
	lists    map[string][]string
	expiries map[string]time.Duration
	lranges  []lrangeCall
	execErr  error
	closed   bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		lists:    make(map[string][]string),
		expiries: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) TxPipeline() redis.Pipeliner { return &fakePipe{rdb: f} }

func (f *fakeRedis) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	f.lranges = append(f.lranges, lrangeCall{key: key, start: start, stop: stop})
	cmd := redis.NewStringSliceCmd(ctx, "lrange", key, start, stop)
	cmd.SetVal(listRange(f.lists[key], start, stop))
	return cmd
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

// listRange mirrors LRANGE/LTRIM index handling, including negative indexes.
func listRange(list []string, start, stop int64) []string {
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil
	}
	return append([]string(nil), list[start:stop+1]...)
}

// fakePipe implements the pipeline commands redisStore uses; anything else
// panics through the nil embedded interface.
type fakePipe struct {
	redis.Pipeliner
	rdb *fakeRedis
	ops []func()
}

func (p *fakePipe) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	p.ops = append(p.ops, func() {
		for _, v := range values {
			var s string
			switch val := v.(type) {
			case []byte:
				s = string(val)
			default:
				s = fmt.Sprint(val)
			}
			p.rdb.lists[key] = append([]string{s}, p.rdb.lists[key]...)
		}
	})
	return redis.NewIntCmd(ctx, "lpush", key)
}

func (p *fakePipe) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	p.ops = append(p.ops, func() {
		p.rdb.lists[key] = listRange(p.rdb.lists[key], start, stop)
	})
	return redis.NewStatusCmd(ctx, "ltrim", key, start, stop)
}

func (p *fakePipe) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	p.ops = append(p.ops, func() {
		p.rdb.expiries[key] = expiration
	})
	return redis.NewBoolCmd(ctx, "expire", key, expiration)
}

func (p *fakePipe) Exec(context.Context) ([]redis.Cmder, error) {
	if p.rdb.execErr != nil {
		return nil, p.rdb.execErr
	}
	for _, op := range p.ops {
		op()
	}
	return nil, nil
}

func outcomeAt(id string, at time.Time) domain.Outcome {
	return domain.Outcome{FetchID: id, Record: domain.ServiceRecord{Message: id}, StartedAt: at, CompletedAt: at}
}

func TestRedisStoreCapsHistoryAndRefreshesExpiry(t *testing.T) {
	rdb := newFakeRedis()
	store := newRedisStore(rdb, normalizeOptions(Options{RedisKey: "svc:test", HistorySize: 3, OutcomeTTL: time.Hour}))

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		if err := store.Record(ctx, outcomeAt(fmt.Sprintf("f%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Record f%d: %v", i, err)
		}
	}

	list := rdb.lists["svc:test"]
	if len(list) != 3 {
		t.Fatalf("expected list capped at 3, got %d", len(list))
	}
	var newest Entry
	if err := json.Unmarshal([]byte(list[0]), &newest); err != nil {
		t.Fatalf("decode head: %v", err)
	}
	if newest.FetchID != "f4" {
		t.Fatalf("head = %s, want f4", newest.FetchID)
	}
	if rdb.expiries["svc:test"] != time.Hour {
		t.Fatalf("expiry = %v, want 1h", rdb.expiries["svc:test"])
	}

	entries, err := store.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.FetchID)
	}
	if fmt.Sprint(ids) != "[f4 f3 f2]" {
		t.Fatalf("history = %v", ids)
	}
}

func TestRedisStoreHistoryLimitMapsToRangeStop(t *testing.T) {
	rdb := newFakeRedis()
	store := newRedisStore(rdb, normalizeOptions(Options{RedisKey: "svc:test"}))

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 4; i++ {
		if err := store.Record(ctx, outcomeAt(fmt.Sprintf("f%d", i), base)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	cases := []struct {
		limit    int
		wantStop int64
		wantLen  int
	}{
		{limit: 0, wantStop: -1, wantLen: 4},
		{limit: -5, wantStop: -1, wantLen: 4},
		{limit: 1, wantStop: 0, wantLen: 1},
		{limit: 2, wantStop: 1, wantLen: 2},
		{limit: 10, wantStop: 9, wantLen: 4},
	}
	for _, tc := range cases {
		entries, err := store.History(ctx, tc.limit)
		if err != nil {
			t.Fatalf("History(%d): %v", tc.limit, err)
		}
		last := rdb.lranges[len(rdb.lranges)-1]
		if last.key != "svc:test" || last.start != 0 || last.stop != tc.wantStop {
			t.Fatalf("History(%d) issued LRANGE %#v, want stop %d", tc.limit, last, tc.wantStop)
		}
		if len(entries) != tc.wantLen {
			t.Fatalf("History(%d) returned %d entries, want %d", tc.limit, len(entries), tc.wantLen)
		}
	}
}

func TestRedisStoreRecordExecError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.execErr = errors.New("connection reset")
	store := newRedisStore(rdb, normalizeOptions(Options{}))

	err := store.Record(context.Background(), outcomeAt("f1", time.Now()))
	if err == nil || !errors.Is(err, rdb.execErr) {
		t.Fatalf("expected wrapped exec error, got %v", err)
	}
	if len(rdb.lists) != 0 {
		t.Fatalf("failed transaction must not modify lists")
	}

	if err := store.Close(); err != nil || !rdb.closed {
		t.Fatalf("Close err=%v closed=%v", err, rdb.closed)
	}
}
