package ports

import (
	"context"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for answering one question.
type QuestionAnswerer interface {
	Answer(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
}

// KnowledgeInspector exposes read-only facts about the knowledge base and enhancer.
type KnowledgeInspector interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
	Capability() domain.EnhancerCapability
}
