package metrics

import (
	"context"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
)

type instrumentedPublisher struct {
	next    ports.QueryEventPublisher
	metrics *HTTPServerMetrics
}

// InstrumentPublisher counts published and failed query events.
func (m *HTTPServerMetrics) InstrumentPublisher(next ports.QueryEventPublisher) ports.QueryEventPublisher {
	if next == nil {
		return nil
	}
	return &instrumentedPublisher{next: next, metrics: m}
}

func (p *instrumentedPublisher) PublishQueryAnswered(ctx context.Context, event domain.QueryEvent) error {
	err := p.next.PublishQueryAnswered(ctx, event)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.eventsTotal.WithLabelValues(p.metrics.service, status).Inc()
	return err
}
