package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
)

// QueryObserver receives per-question measurements; nil disables them.
type QueryObserver interface {
	ObserveComposition(outcome domain.Outcome, sourceCount int, duration time.Duration)
}

type QueryUseCase struct {
	retriever   ports.Retriever
	composer    *Composer
	stats       ports.KnowledgeBaseStats
	publisher   ports.QueryEventPublisher
	observer    QueryObserver
	defaultTopK int
	maxTopK     int
}

type QueryOptions struct {
	Stats       ports.KnowledgeBaseStats
	Publisher   ports.QueryEventPublisher
	Observer    QueryObserver
	DefaultTopK int
	MaxTopK     int
}

func NewQueryUseCase(retriever ports.Retriever, composer *Composer, opts QueryOptions) *QueryUseCase {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 10
	}
	if opts.MaxTopK <= 0 {
		opts.MaxTopK = 50
	}
	if opts.MaxTopK < opts.DefaultTopK {
		opts.MaxTopK = opts.DefaultTopK
	}
	return &QueryUseCase{
		retriever:   retriever,
		composer:    composer,
		stats:       opts.Stats,
		publisher:   opts.Publisher,
		observer:    opts.Observer,
		defaultTopK: opts.DefaultTopK,
		maxTopK:     opts.MaxTopK,
	}
}

func (uc *QueryUseCase) Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer", fmt.Errorf("question is required"))
	}

	topK := req.TopK
	if topK <= 0 {
		topK = uc.defaultTopK
	}
	if topK > uc.maxTopK {
		topK = uc.maxTopK
	}

	start := time.Now()
	retrieval, err := uc.retriever.Retrieve(ctx, req.Question, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	composition := uc.composer.Compose(ctx, req.Question, retrieval, req.UseEnhancer)
	duration := time.Since(start)

	if composition.Outcome == domain.OutcomeFallback {
		slog.Warn("enhancer_fallback",
			"provider", uc.composer.Capability().Provider,
			"sources", len(retrieval.Sources),
			"error", composition.Cause,
		)
	}
	if uc.observer != nil {
		uc.observer.ObserveComposition(composition.Outcome, len(composition.Response.Sources), duration)
	}

	result := &domain.QueryResult{
		Question:    req.Question,
		Composition: composition,
		NumResults:  retrieval.SearchResultsCount,
	}
	uc.publish(ctx, result, duration)
	return result, nil
}

func (uc *QueryUseCase) Stats(ctx context.Context) (domain.StoreStats, error) {
	if uc.stats == nil {
		return domain.StoreStats{}, domain.WrapError(domain.ErrUnavailable, "stats", fmt.Errorf("knowledge base stats not configured"))
	}
	return uc.stats.Stats(ctx)
}

func (uc *QueryUseCase) Capability() domain.EnhancerCapability {
	return uc.composer.Capability()
}

func (uc *QueryUseCase) publish(ctx context.Context, result *domain.QueryResult, duration time.Duration) {
	if uc.publisher == nil {
		return
	}
	resp := result.Composition.Response
	event := domain.QueryEvent{
		ID:         uuid.NewString(),
		Question:   result.Question,
		Outcome:    result.Composition.Outcome,
		Confidence: resp.Confidence,
		NumSources: len(resp.Sources),
		NumResults: result.NumResults,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
		AnsweredAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := uc.publisher.PublishQueryAnswered(ctx, event); err != nil {
		slog.Warn("query_event_publish_failed", "event_id", event.ID, "error", err)
	}
}
