package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/saarthi-qa-gateway/internal/config"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/llm/openaicompat"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/resilience"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
	providerOllama = "ollama"
	providerNone   = "none"
)

type modelEnhancer interface {
	ports.Enhancer
	Model() string
}

type ollamaEnhancer struct {
	*ollama.Generator
	model string
}

func (e ollamaEnhancer) Model() string {
	return e.model
}

// buildEnhancer decides the enhancer capability once. Any failure leaves the
// service answering from retrieval only.
func buildEnhancer(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.Enhancer, domain.EnhancerCapability) {
	capability := domain.EnhancerCapability{Provider: cfg.EnhancerProvider}
	if cfg.EnhancerProvider == "" || cfg.EnhancerProvider == providerNone {
		capability.Provider = providerNone
		capability.Reason = "enhancer disabled"
		logCapability(capability)
		return nil, capability
	}

	raw, err := newProviderClient(ctx, cfg)
	if err != nil {
		capability.Reason = err.Error()
		logCapability(capability)
		return nil, capability
	}
	capability.Model = raw.Model()

	guarded := llm.NewGuardedEnhancer(cfg.EnhancerProvider, raw, executor, cfg.EnhancerTimeout)
	if cfg.EnhancerHandshake {
		if _, err := llm.Handshake(ctx, guarded, cfg.EnhancerHandshakeTimeout); err != nil {
			capability.Reason = err.Error()
			logCapability(capability)
			return guarded, capability
		}
	}

	capability.Ready = true
	logCapability(capability)
	return guarded, capability
}

func newProviderClient(ctx context.Context, cfg config.Config) (modelEnhancer, error) {
	switch cfg.EnhancerProvider {
	case providerGemini:
		client, err := gemini.New(ctx, cfg.EnhancerModel, gemini.Config{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			return nil, err
		}
		return client, nil
	case providerOpenAI:
		client, err := openaicompat.New(cfg.EnhancerModel, openaicompat.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	case providerOllama:
		model := cfg.EnhancerModel
		if model == "" {
			model = cfg.OllamaGenModel
		}
		client := ollama.New(cfg.OllamaURL, model, cfg.OllamaEmbedModel)
		return ollamaEnhancer{Generator: ollama.NewGenerator(client), model: model}, nil
	default:
		return nil, fmt.Errorf("unknown enhancer provider %q", cfg.EnhancerProvider)
	}
}

func logCapability(capability domain.EnhancerCapability) {
	if capability.Ready {
		slog.Info("enhancer_ready", "provider", capability.Provider, "model", capability.Model)
		return
	}
	slog.Warn("enhancer_unavailable",
		"provider", capability.Provider,
		"model", capability.Model,
		"reason", capability.Reason,
	)
}
