package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

// Event represents the payload published downstream for every fetch outcome.
type Event struct {
	FetchID     string    `json:"fetch_id"`
	Source      string    `json:"source"`
	OK          bool      `json:"ok"`
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewEvent constructs an Event for the given endpoint + outcome.
func NewEvent(source string, o domain.Outcome) Event {
	evt := Event{
		FetchID:     o.FetchID,
		Source:      source,
		OK:          o.OK(),
		Kind:        apicall.Kind(o.Err),
		Message:     o.Message(),
		StartedAt:   o.StartedAt,
		CompletedAt: o.CompletedAt,
	}
	if o.Err != nil {
		evt.Error = o.Err.Error()
	}
	return evt
}

// attributes are attached to queue messages so subscribers can filter without decoding.
func (e Event) attributes() map[string]string {
	ok := "false"
	if e.OK {
		ok = "true"
	}
	return map[string]string{
		"fetch_id": e.FetchID,
		"kind":     e.Kind,
		"ok":       ok,
	}
}
