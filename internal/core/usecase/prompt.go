package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
)

// buildEnhancementPrompt renders at most limit sources into the prompt; an
// empty source list asks the model for general guidance instead.
func buildEnhancementPrompt(profile domain.PromptProfile, question string, sources []domain.SourceSnippet, limit int) string {
	var b strings.Builder
	b.WriteString(profile.Render(profile.Preamble))
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nRetrieved Data from Knowledge Base:\n")

	if len(sources) == 0 {
		b.WriteString("\n")
		b.WriteString(profile.Render(profile.NoDataNote))
		b.WriteString("\n")
	}
	for idx, src := range promptSources(sources, limit) {
		fmt.Fprintf(&b, "\nSource %d:\n", idx+1)
		fmt.Fprintf(&b, "Dataset: %s\n", src.Dataset)
		fmt.Fprintf(&b, "Information: %s\n", src.Chunk)
		if strings.TrimSpace(src.Details) != "" {
			fmt.Fprintf(&b, "Details: %s\n", src.Details)
		}
		fmt.Fprintf(&b, "Relevance: %s\n", formatRelevance(src.Relevance))
	}

	b.WriteString("\n\n")
	b.WriteString(profile.Render(profile.Guidelines))
	b.WriteString("\n\nYour Response:")
	return b.String()
}

func promptSources(sources []domain.SourceSnippet, limit int) []domain.SourceSnippet {
	if limit <= 0 || len(sources) <= limit {
		return sources
	}
	return sources[:limit]
}

func formatRelevance(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
