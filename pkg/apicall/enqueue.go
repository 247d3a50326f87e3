package apicall

import (
	"context"

	"go.uber.org/zap"
)

// DefaultFailureHandler is used when Enqueue gets no failure handler. It logs
// at debug level and drops the error.
func DefaultFailureHandler(err error) {
	zap.L().Debug("api call failed", zap.String("kind", Kind(err)), zap.Error(err))
}

// Enqueue runs call on its own goroutine and invokes exactly one of onSuccess
// or onFailure exactly once. The returned channel is closed after the handler
// returns; fire-and-forget callers may ignore it.
func Enqueue[T any](ctx context.Context, call Call[T], onSuccess func(T), onFailure func(error)) <-chan struct{} {
	if ctx == nil {
		ctx = context.Background()
	}
	if onSuccess == nil {
		onSuccess = func(T) {}
	}
	if onFailure == nil {
		onFailure = DefaultFailureHandler
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		resp, err := call(ctx)
		if err != nil {
			onFailure(&TransportError{Cause: err})
			return
		}

		zap.L().Debug("api call response",
			zap.Int("status_code", resp.StatusCode),
			zap.Bool("has_body", resp.Body != nil),
			zap.Any("body", resp.Body),
		)

		switch {
		case !resp.IsSuccessful():
			onFailure(&HTTPError{StatusCode: resp.StatusCode})
		case resp.Body == nil:
			onFailure(&MissingBodyError{StatusCode: resp.StatusCode})
		default:
			onSuccess(*resp.Body)
		}
	}()
	return done
}
