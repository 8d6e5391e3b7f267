package ports

import (
	"context"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

// Retriever maps a question to ranked snippets plus an aggregate confidence.
type Retriever interface {
	Retrieve(ctx context.Context, question string, topK int) (domain.RetrievalResult, error)
}

// Embedder builds the query vector.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore runs similarity search over the precomputed knowledge base.
type VectorStore interface {
	Search(ctx context.Context, queryVector []float32, limit int) ([]domain.SourceSnippet, error)
	Count(ctx context.Context) (int, error)
}

// Enhancer turns a composed prompt into free text. It may fail at any time.
type Enhancer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// QueryEventPublisher announces answered questions to downstream consumers.
type QueryEventPublisher interface {
	PublishQueryAnswered(ctx context.Context, event domain.QueryEvent) error
}

// KnowledgeBaseStats reports the size of the backing knowledge base.
type KnowledgeBaseStats interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
}
