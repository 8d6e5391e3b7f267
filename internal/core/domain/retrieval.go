package domain

// SourceSnippet is one knowledge-base chunk matched for a question.
type SourceSnippet struct {
	Dataset   string  `json:"dataset"`
	Chunk     string  `json:"chunk"`
	Details   string  `json:"details,omitempty"`
	Relevance float64 `json:"relevance"`
}

// RetrievalResult is what the retriever hands to the composer.
type RetrievalResult struct {
	Answer             string          `json:"answer"`
	Confidence         float64         `json:"confidence"`
	Sources            []SourceSnippet `json:"sources"`
	SearchResultsCount int             `json:"search_results_count"`
}

func (r RetrievalResult) HasData() bool {
	return len(r.Sources) > 0
}

// StoreStats describes the backing knowledge base.
type StoreStats struct {
	TotalChunks int    `json:"total_chunks"`
	Method      string `json:"method"`
}

// ClampConfidence keeps a score inside [0,1]; NaN collapses to 0.
func ClampConfidence(v float64) float64 {
	switch {
	case v != v:
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
