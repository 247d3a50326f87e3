package domain

import (
	"errors"
	"testing"
	"time"
)

func TestOutcomeMessage(t *testing.T) {
	ok := Succeeded("f1", ServiceRecord{Message: "ok"}, time.Now())
	if !ok.OK() || ok.Message() != "ok" {
		t.Fatalf("unexpected success outcome: ok=%v message=%q", ok.OK(), ok.Message())
	}

	failed := Failed("f2", errors.New("dial tcp: refused"), time.Now())
	if failed.OK() {
		t.Fatalf("expected failed outcome")
	}
	want := "Error fetching services: dial tcp: refused"
	if got := failed.Message(); got != want {
		t.Fatalf("Message() = %q, want %q", got, want)
	}
	if got := failed.AsRecord().Message; got != want {
		t.Fatalf("AsRecord().Message = %q, want %q", got, want)
	}
}

func TestOutcomeDuration(t *testing.T) {
	started := time.Now().Add(-250 * time.Millisecond)
	o := Succeeded("f", ServiceRecord{}, started)
	if o.Duration() < 250*time.Millisecond {
		t.Fatalf("expected duration >= 250ms, got %v", o.Duration())
	}
	if (Outcome{}).Duration() != 0 {
		t.Fatalf("zero outcome should have zero duration")
	}
}
