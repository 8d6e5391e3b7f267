package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sony/gobreaker/v2"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

func TestEncodeQueryEventUsesSnakeCase(t *testing.T) {
	payload, err := encodeQueryEvent(domain.QueryEvent{
		ID:         "evt-1",
		Question:   "What grows in sandy soil?",
		Outcome:    domain.OutcomeFallback,
		Confidence: 0.4,
		NumSources: 2,
		NumResults: 7,
	})
	if err != nil {
		t.Fatalf("encodeQueryEvent() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["outcome"] != string(domain.OutcomeFallback) {
		t.Fatalf("unexpected outcome %v", decoded["outcome"])
	}
	if decoded["num_results"] != float64(7) || decoded["num_sources"] != float64(2) {
		t.Fatalf("unexpected counters in %s", payload)
	}
}

func TestClassifyPublishError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		retry  bool
		record bool
	}{
		{"canceled", context.Canceled, false, false},
		{"closed", nats.ErrConnectionClosed, true, true},
		{"draining", nats.ErrConnectionDraining, true, true},
		{"reconnect buffer full", nats.ErrReconnectBufExceeded, true, true},
		{"flush timeout", nats.ErrTimeout, true, true},
		{"open circuit", gobreaker.ErrOpenState, true, true},
		{"bad subject", nats.ErrBadSubject, false, false},
		{"payload too large", fmt.Errorf("nats publish: %w", nats.ErrMaxPayload), false, false},
		{"unknown", errors.New("boom"), false, true},
	}
	for _, tc := range cases {
		got := classifyPublishError(tc.err)
		if got.Retryable != tc.retry || got.RecordFailure != tc.record {
			t.Fatalf("%s: unexpected classification %+v", tc.name, got)
		}
	}
}

func TestMarkTemporaryFlagsConnectionLoss(t *testing.T) {
	err := markTemporary(errors.Join(errors.New("publish"), nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if domain.IsKind(markTemporary(nats.ErrBadSubject), domain.ErrTemporary) {
		t.Fatalf("bad subject should stay permanent")
	}
}

func TestNewFailsWithoutServer(t *testing.T) {
	retry := false
	_, err := NewWithOptions("nats://127.0.0.1:1", "", Options{
		ConnectTimeout:       100 * time.Millisecond,
		RetryOnFailedConnect: &retry,
	})
	if err == nil {
		t.Fatalf("expected connect error")
	}
}
