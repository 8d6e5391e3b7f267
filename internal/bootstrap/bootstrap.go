package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/saarthi-qa-gateway/internal/config"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/usecase"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/promptprofile"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/queue/nats"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/resilience"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/vector/pgvector"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/vector/qdrant"
	"github.com/kirillkom/saarthi-qa-gateway/internal/observability/metrics"
)

const ServiceName = "qa-api"

type App struct {
	Config config.Config

	QueryUC    *usecase.QueryUseCase
	Capability domain.EnhancerCapability
	Metrics    *metrics.HTTPServerMetrics

	closeFns []func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{
		Config:  cfg,
		Metrics: metrics.NewHTTPServerMetrics(ServiceName),
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel)
	embedder := ollama.NewEmbedder(ollamaClient)

	store, err := app.openVectorStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	retrieveUC := usecase.NewRetrieveUseCase(embedder, store, cfg.RAGMinScore, cfg.RetrieverBackend)

	profile, err := promptprofile.Load(cfg.PromptProfilePath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load prompt profile: %w", err)
	}

	executor := resilience.NewExecutor(breakerConfig(cfg).SingleAttempt()).
		OnStateChange(app.Metrics.RecordBreakerTransition)
	enhancer, capability := buildEnhancer(ctx, cfg, executor)
	app.Capability = capability
	app.Metrics.SetEnhancerCapability(capability)

	composer := usecase.NewComposer(enhancer, capability, usecase.ComposerPolicy{
		PromptSourceLimit:         cfg.ComposerPromptSources,
		GeneralGuidanceConfidence: cfg.ComposerGeneralConfidence,
		Profile:                   profile,
	})

	app.QueryUC = usecase.NewQueryUseCase(retrieveUC, composer, usecase.QueryOptions{
		Stats:       retrieveUC,
		Publisher:   app.Metrics.InstrumentPublisher(app.openPublisher()),
		Observer:    app.Metrics,
		DefaultTopK: cfg.RAGTopK,
		MaxTopK:     cfg.RAGMaxTopK,
	})
	return app, nil
}

func (a *App) openVectorStore(ctx context.Context) (ports.VectorStore, error) {
	switch a.Config.RetrieverBackend {
	case "qdrant":
		return qdrant.New(a.Config.QdrantURL, a.Config.QdrantCollection), nil
	case "pgvector":
		db, err := pgvector.OpenDB(ctx, a.Config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.onClose(func() { closeDB(db) })
		return pgvector.NewStore(db, a.Config.PGVectorTable), nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "open vector store",
			fmt.Errorf("unknown retriever backend %q", a.Config.RetrieverBackend))
	}
}

// openPublisher returns nil when events are disabled or the broker is unreachable.
func (a *App) openPublisher() ports.QueryEventPublisher {
	if a.Config.NATSURL == "" {
		return nil
	}
	publisher, err := nats.NewWithOptions(a.Config.NATSURL, a.Config.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		slog.Warn("query_events_disabled", "url", a.Config.NATSURL, "error", err)
		return nil
	}
	a.onClose(publisher.Close)
	return publisher
}

func (a *App) onClose(fn func()) {
	a.closeFns = append(a.closeFns, fn)
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

func breakerConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.BreakerEnabled = cfg.BreakerEnabled
	if cfg.BreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.BreakerMinRequests)
	}
	if cfg.BreakerFailureRatio > 0 {
		out.BreakerFailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeout > 0 {
		out.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	}
	if cfg.BreakerHalfOpenMaxCalls > 0 {
		out.BreakerHalfOpenMaxCalls = uint32(cfg.BreakerHalfOpenMaxCalls)
	}
	return out
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		slog.Warn("postgres_close_failed", "error", err)
	}
}
