package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

func TestRecorderCountsByResult(t *testing.T) {
	r := NewRecorder()
	started := time.Now().Add(-10 * time.Millisecond)

	r.Observe(domain.Succeeded("a", domain.ServiceRecord{Message: "ok"}, started))
	r.Observe(domain.Succeeded("b", domain.ServiceRecord{Message: "ok"}, started))
	r.Observe(domain.Failed("c", &apicall.HTTPError{StatusCode: 500}, started))
	r.Observe(domain.Failed("d", &apicall.TransportError{Cause: errors.New("down")}, started))

	if got := testutil.ToFloat64(r.fetches.WithLabelValues(apicall.KindOK)); got != 2 {
		t.Fatalf("ok count = %v", got)
	}
	if got := testutil.ToFloat64(r.fetches.WithLabelValues(apicall.KindHTTPError)); got != 1 {
		t.Fatalf("http_error count = %v", got)
	}
	if got := testutil.ToFloat64(r.fetches.WithLabelValues(apicall.KindTransportError)); got != 1 {
		t.Fatalf("transport_error count = %v", got)
	}
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	r := NewRecorder()
	r.Observe(domain.Succeeded("a", domain.ServiceRecord{}, time.Now()))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `services_fetch_total{result="ok"} 1`) {
		t.Fatalf("metrics output missing counter:\n%s", body)
	}
}
