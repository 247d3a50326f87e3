package publishers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: http2
    type: http
    enabled: true
    http:
      url: https://example.com/2
  - id: topic
    type: gcp_pubsub
    gcp_pubsub:
      project_id: demo
      topic: outcomes
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "http2" || enabled[1].ID != "topic" {
		t.Fatalf("expected http2 and topic enabled, got %#v", enabled)
	}
	if enabled[0].HTTP.Method != "POST" || enabled[0].HTTP.TimeoutSeconds != 5 {
		t.Fatalf("http defaults not applied: %#v", enabled[0].HTTP)
	}
	if cfg, ok := reg.ByID("topic"); !ok || cfg.GCP.Topic != "outcomes" {
		t.Fatalf("ByID(topic) = %#v ok=%v", cfg, ok)
	}
}

func TestValidatePublisherConfigRejectsMissingBlocks(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "s1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "q"}},
		{ID: "n1", Type: TypeSNS, SNS: &SNSPublisherConfig{Region: "us-east-1"}},
		{ID: "g1", Type: TypeGCPPubSub, GCP: &GCPQueueConfig{ProjectID: "p"}},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}

func TestNewEventFromOutcome(t *testing.T) {
	now := time.Now().UTC()
	failed := domain.Failed("f9", &apicall.HTTPError{StatusCode: 503}, now)
	evt := NewEvent("http://localhost:8080/services", failed)
	if evt.OK || evt.Kind != apicall.KindHTTPError || evt.Error != "API call failed with status code 503" {
		t.Fatalf("unexpected event %#v", evt)
	}
	if evt.Message != "Error fetching services: API call failed with status code 503" {
		t.Fatalf("Message = %q", evt.Message)
	}

	ok := NewEvent("src", domain.Succeeded("f10", domain.ServiceRecord{Message: "up"}, now))
	if !ok.OK || ok.Kind != apicall.KindOK || ok.Error != "" || ok.Message != "up" {
		t.Fatalf("unexpected event %#v", ok)
	}
}
