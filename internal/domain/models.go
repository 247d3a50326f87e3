package domain

import "time"

// ErrorMessagePrefix is prepended to every failure rendered for display.
const ErrorMessagePrefix = "Error fetching services: "

// ServiceRecord is the body returned by the services endpoint.
type ServiceRecord struct {
	Message string `json:"message"`
}

// Outcome is the result of one fetch: either a record or an error, never both.
type Outcome struct {
	FetchID     string
	Record      ServiceRecord
	Err         error
	StartedAt   time.Time
	CompletedAt time.Time
}

// Succeeded builds an Outcome carrying the fetched record.
func Succeeded(fetchID string, rec ServiceRecord, started time.Time) Outcome {
	return Outcome{
		FetchID:     fetchID,
		Record:      rec,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
}

// Failed builds an Outcome carrying the fetch error.
func Failed(fetchID string, err error, started time.Time) Outcome {
	return Outcome{
		FetchID:     fetchID,
		Err:         err,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	}
}

// OK reports whether the fetch produced a record.
func (o Outcome) OK() bool { return o.Err == nil }

// Message renders the outcome the way it is shown to users.
func (o Outcome) Message() string {
	if o.Err != nil {
		return ErrorMessagePrefix + o.Err.Error()
	}
	return o.Record.Message
}

// AsRecord folds failures back into a ServiceRecord whose message holds the diagnostic.
func (o Outcome) AsRecord() ServiceRecord {
	return ServiceRecord{Message: o.Message()}
}

// Duration is the wall time between trigger and completion.
func (o Outcome) Duration() time.Duration {
	if o.StartedAt.IsZero() || o.CompletedAt.IsZero() {
		return 0
	}
	return o.CompletedAt.Sub(o.StartedAt)
}
