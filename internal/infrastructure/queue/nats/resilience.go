package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/resilience"
)

// classifyPublishError sorts the failures Conn.Publish can report. Broker
// trouble is retried and counted; a bad event is neither.
func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), brokerUnavailable(err):
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	case errors.Is(err, nats.ErrBadSubject), errors.Is(err, nats.ErrMaxPayload):
		return resilience.ErrorClassification{}
	default:
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: true,
		}
	}
}

// brokerUnavailable covers a connection that is closed, draining, or
// reconnecting with a full pending buffer.
func brokerUnavailable(err error) bool {
	return errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrConnectionDraining) ||
		errors.Is(err, nats.ErrReconnectBufExceeded) ||
		errors.Is(err, nats.ErrTimeout)
}

func markTemporary(err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, "nats.publish", err)
	}
	return err
}
