// Package apicall turns a single asynchronous HTTP call into exactly one
// success or failure callback.
package apicall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/samvad-hq/samvad-services-client/pkg/httpclient"
)

// Response is a completed call. Body is nil when the status was not
// successful or the server sent nothing.
type Response[T any] struct {
	StatusCode int
	Body       *T
}

// IsSuccessful reports whether the status is in the 2xx range.
func (r *Response[T]) IsSuccessful() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Call performs one request. An error means no response was obtained.
type Call[T any] func(ctx context.Context) (*Response[T], error)

// NewJSONCall builds a GET call decoding a successful JSON body into T.
func NewJSONCall[T any](client httpclient.Client, url string, headers map[string]string) Call[T] {
	return func(ctx context.Context) (*Response[T], error) {
		resp, err := client.Get(ctx, url, headers)
		if err != nil {
			return nil, err
		}

		out := &Response[T]{StatusCode: resp.StatusCode()}
		if !out.IsSuccessful() {
			return out, nil
		}

		body := bytes.TrimSpace(resp.Body())
		if len(body) == 0 || bytes.Equal(body, []byte("null")) {
			return out, nil
		}

		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("decode response body: %w", err)
		}
		out.Body = &v
		return out, nil
	}
}
