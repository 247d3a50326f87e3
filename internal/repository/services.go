// Package repository owns the latest services outcome and the fetches that update it.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/internal/logger"
	"github.com/samvad-hq/samvad-services-client/internal/observable"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

// ServicesAPI is the transport the repository fetches through.
type ServicesAPI interface {
	GetServices() apicall.Call[domain.ServiceRecord]
}

// Services holds a single observable slot updated by every fetch completion.
// Overlapping fetches are not sequenced: the last completion wins.
type Services struct {
	api  ServicesAPI
	slot *observable.Slot[domain.Outcome]
	log  logger.Logger
}

// NewServices builds a repository around api.
func NewServices(api ServicesAPI, log logger.Logger) *Services {
	return &Services{
		api:  api,
		slot: observable.NewSlot[domain.Outcome](),
		log:  logger.Ensure(log),
	}
}

// Slot returns the observable slot without triggering a fetch.
func (s *Services) Slot() *observable.Slot[domain.Outcome] { return s.slot }

// TriggerFetch starts a fetch and returns the slot immediately. The slot is
// set once the request completes, to the record or to the failure.
func (s *Services) TriggerFetch(ctx context.Context) *observable.Slot[domain.Outcome] {
	s.start(ctx, uuid.NewString())
	return s.slot
}

// Fetch triggers a fetch and blocks until that fetch has updated the slot or
// ctx is done. The returned outcome is the one this fetch produced, even if
// another completion has since overwritten the slot.
func (s *Services) Fetch(ctx context.Context) (domain.Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	fetchID := uuid.NewString()
	mine := make(chan domain.Outcome, 1)
	cancel := s.slot.Observe(func(o domain.Outcome) {
		if o.FetchID != fetchID {
			return
		}
		select {
		case mine <- o:
		default:
		}
	})
	defer cancel()

	done := s.start(ctx, fetchID)
	select {
	case <-done:
		return <-mine, nil
	case <-ctx.Done():
		return domain.Outcome{}, ctx.Err()
	}
}

// start enqueues one fetch. The returned channel closes after the slot has
// been updated and its observers notified.
func (s *Services) start(ctx context.Context, fetchID string) <-chan struct{} {
	started := time.Now().UTC()

	s.log.DebugObj("services fetch triggered", "fetch_meta", map[string]any{
		"fetch_id": fetchID,
	})

	return apicall.Enqueue(ctx, s.api.GetServices(),
		func(rec domain.ServiceRecord) {
			s.slot.Set(domain.Succeeded(fetchID, rec, started))
		},
		func(err error) {
			s.log.WarnObj(domain.ErrorMessagePrefix+err.Error(), "fetch_error", map[string]any{
				"fetch_id": fetchID,
				"kind":     apicall.Kind(err),
			})
			s.slot.Set(domain.Failed(fetchID, err, started))
		},
	)
}
