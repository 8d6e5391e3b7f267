package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RAG_TOP_K", "COMPOSER_PROMPT_SOURCES", "COMPOSER_GENERAL_CONFIDENCE",
		"ENHANCER_TIMEOUT", "ENHANCER_PROVIDER", "RETRIEVER_BACKEND", "NATS_URL",
		"CORS_ALLOWED_ORIGINS", "KNOWLEDGE_DATASETS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.RAGTopK != 10 {
		t.Fatalf("expected default top k 10, got %d", cfg.RAGTopK)
	}
	if cfg.ComposerPromptSources != 3 {
		t.Fatalf("expected default prompt sources 3, got %d", cfg.ComposerPromptSources)
	}
	if cfg.ComposerGeneralConfidence != 0.5 {
		t.Fatalf("expected default general confidence 0.5, got %v", cfg.ComposerGeneralConfidence)
	}
	if cfg.EnhancerTimeout != 30*time.Second {
		t.Fatalf("expected default enhancer timeout 30s, got %s", cfg.EnhancerTimeout)
	}
	if cfg.EnhancerProvider != "gemini" || cfg.RetrieverBackend != "qdrant" {
		t.Fatalf("unexpected default backends: %q %q", cfg.EnhancerProvider, cfg.RetrieverBackend)
	}
	if cfg.NATSURL != "" {
		t.Fatalf("expected events disabled by default, got %q", cfg.NATSURL)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected default cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.KnowledgeDatasets != nil {
		t.Fatalf("expected no datasets by default, got %v", cfg.KnowledgeDatasets)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("COMPOSER_GENERAL_CONFIDENCE", "0.65")
	t.Setenv("ENHANCER_TIMEOUT", "12")
	t.Setenv("API_BACKPRESSURE_WAIT", "1500ms")
	t.Setenv("ENHANCER_PROVIDER", "OpenAI")
	t.Setenv("KNOWLEDGE_DATASETS", "crop_production, soil_health ,,")

	cfg := Load()
	if cfg.RAGTopK != 7 {
		t.Fatalf("expected top k 7, got %d", cfg.RAGTopK)
	}
	if cfg.ComposerGeneralConfidence != 0.65 {
		t.Fatalf("expected general confidence 0.65, got %v", cfg.ComposerGeneralConfidence)
	}
	if cfg.EnhancerTimeout != 12*time.Second {
		t.Fatalf("expected plain seconds to parse, got %s", cfg.EnhancerTimeout)
	}
	if cfg.APIBackpressureWait != 1500*time.Millisecond {
		t.Fatalf("expected duration to parse, got %s", cfg.APIBackpressureWait)
	}
	if cfg.EnhancerProvider != "openai" {
		t.Fatalf("expected provider to be lowercased, got %q", cfg.EnhancerProvider)
	}
	if len(cfg.KnowledgeDatasets) != 2 || cfg.KnowledgeDatasets[1] != "soil_health" {
		t.Fatalf("unexpected datasets %v", cfg.KnowledgeDatasets)
	}
}

func TestGeminiKeyFallsBackToGoogleKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	if got := Load().GeminiAPIKey; got != "google-key" {
		t.Fatalf("expected GOOGLE_API_KEY fallback, got %q", got)
	}
}

func TestInvalidNumbersKeepDefaults(t *testing.T) {
	t.Setenv("RAG_TOP_K", "ten")
	t.Setenv("COMPOSER_GENERAL_CONFIDENCE", "high")
	t.Setenv("ENHANCER_TIMEOUT", "soon")

	cfg := Load()
	if cfg.RAGTopK != 10 || cfg.ComposerGeneralConfidence != 0.5 || cfg.EnhancerTimeout != 30*time.Second {
		t.Fatalf("expected defaults for invalid values, got %+v", cfg)
	}
}
