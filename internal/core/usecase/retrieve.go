package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
)

const noMatchAnswer = "I couldn't find information matching your question in the knowledge base."

type RetrieveUseCase struct {
	embedder ports.Embedder
	store    ports.VectorStore
	minScore float64
	method   string
}

func NewRetrieveUseCase(
	embedder ports.Embedder,
	store ports.VectorStore,
	minScore float64,
	method string,
) *RetrieveUseCase {
	return &RetrieveUseCase{
		embedder: embedder,
		store:    store,
		minScore: minScore,
		method:   method,
	}
}

func (uc *RetrieveUseCase) Retrieve(ctx context.Context, question string, topK int) (domain.RetrievalResult, error) {
	if topK <= 0 {
		topK = 10
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.store.Search(ctx, queryVector, topK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("search vector store: %w", err)
	}

	sources := make([]domain.SourceSnippet, 0, len(hits))
	for _, hit := range hits {
		if hit.Relevance < uc.minScore {
			continue
		}
		sources = append(sources, hit)
	}

	best, ok := bestSource(sources)
	if !ok {
		return domain.RetrievalResult{
			Answer:  noMatchAnswer,
			Sources: sources,
		}, nil
	}
	return domain.RetrievalResult{
		Answer:             rawAnswer(best),
		Confidence:         domain.ClampConfidence(best.Relevance),
		Sources:            sources,
		SearchResultsCount: len(sources),
	}, nil
}

func (uc *RetrieveUseCase) Stats(ctx context.Context) (domain.StoreStats, error) {
	total, err := uc.store.Count(ctx)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("count vector store: %w", err)
	}
	return domain.StoreStats{
		TotalChunks: total,
		Method:      uc.method,
	}, nil
}

func rawAnswer(best domain.SourceSnippet) string {
	text := strings.TrimSpace(best.Chunk)
	if best.Dataset == "" {
		return text
	}
	return fmt.Sprintf("Based on %s: %s", best.Dataset, text)
}

// bestSource picks the highest-relevance snippet; ties keep store order.
func bestSource(sources []domain.SourceSnippet) (domain.SourceSnippet, bool) {
	if len(sources) == 0 {
		return domain.SourceSnippet{}, false
	}
	best := sources[0]
	for _, src := range sources[1:] {
		if src.Relevance > best.Relevance {
			best = src
		}
	}
	return best, true
}
