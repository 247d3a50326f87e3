package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

// Package storage keeps a bounded, expiring history of fetch outcomes.

// ErrStoreLocked is returned when another process holds the bbolt file,
// typically a running watch.
var ErrStoreLocked = errors.New("storage is locked by another process")

// Store records outcomes and returns them newest first.
type Store interface {
	Close() error
	Record(ctx context.Context, o domain.Outcome) error
	History(ctx context.Context, limit int) ([]Entry, error)
}

// Entry is the persisted form of an outcome.
type Entry struct {
	FetchID     string    `json:"fetch_id"`
	OK          bool      `json:"ok"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewEntry converts an outcome into an Entry expiring after ttl.
func NewEntry(o domain.Outcome, ttl time.Duration) Entry {
	e := Entry{
		FetchID:     o.FetchID,
		OK:          o.OK(),
		Kind:        apicall.Kind(o.Err),
		Message:     o.Message(),
		StartedAt:   o.StartedAt,
		CompletedAt: o.CompletedAt,
	}
	if o.Err != nil {
		e.Error = o.Err.Error()
	}
	if e.CompletedAt.IsZero() {
		e.CompletedAt = time.Now().UTC()
	}
	e.ExpiresAt = e.CompletedAt.Add(ttl)
	return e
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	OutcomeTTL      time.Duration
	CleanupInterval time.Duration

	// Redis only.
	RedisKey    string
	HistorySize int64
}

const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
	TypeRedis = "redis"

	defaultOutcomeTTL      = 5 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
	defaultRedisKey        = "services:outcomes"
	defaultHistorySize     = 100
)

// NewStore creates the configured storage backend. For bbolt, location is a
// file path; for redis it is the server address.
func NewStore(typ, location string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(location, opts)
	case TypeRedis:
		if strings.TrimSpace(location) == "" {
			return nil, fmt.Errorf("redis storage requires an address")
		}
		return openRedis(location, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OutcomeTTL <= 0 {
		opts.OutcomeTTL = defaultOutcomeTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	if strings.TrimSpace(opts.RedisKey) == "" {
		opts.RedisKey = defaultRedisKey
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                                  { return nil }
func (noopStore) Record(context.Context, domain.Outcome) error  { return nil }
func (noopStore) History(context.Context, int) ([]Entry, error) { return nil, nil }
