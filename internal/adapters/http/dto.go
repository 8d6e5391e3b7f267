package httpadapter

import "github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"

type queryRequest struct {
	Question    string `json:"question"`
	TopK        int    `json:"top_k"`
	UseEnhancer *bool  `json:"use_enhancer"`
	// UseGemini is the legacy name of UseEnhancer.
	UseGemini *bool `json:"use_gemini"`
}

func (r queryRequest) enhancerRequested() bool {
	switch {
	case r.UseEnhancer != nil:
		return *r.UseEnhancer
	case r.UseGemini != nil:
		return *r.UseGemini
	default:
		return true
	}
}

type queryResponse struct {
	Question        string                 `json:"question"`
	Answer          string                 `json:"answer"`
	Confidence      float64                `json:"confidence"`
	Sources         []domain.SourceSnippet `json:"sources"`
	NumResults      int                    `json:"num_results"`
	AIEnhanced      bool                   `json:"ai_enhanced"`
	GeneralGuidance *bool                  `json:"general_guidance,omitempty"`
	Fallback        *bool                  `json:"fallback,omitempty"`
}

func toQueryResponse(result *domain.QueryResult) queryResponse {
	resp := result.Composition.Response
	sources := resp.Sources
	if sources == nil {
		sources = []domain.SourceSnippet{}
	}
	return queryResponse{
		Question:        result.Question,
		Answer:          resp.Answer,
		Confidence:      resp.Confidence,
		Sources:         sources,
		NumResults:      result.NumResults,
		AIEnhanced:      resp.AIEnhanced,
		GeneralGuidance: resp.GeneralGuidance,
		Fallback:        resp.Fallback,
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status            string `json:"status"`
	Message           string `json:"message"`
	EnhancerAvailable *bool  `json:"enhancer_available,omitempty"`
}

type statsResponse struct {
	TotalChunks       int      `json:"total_chunks"`
	Method            string   `json:"method"`
	EnhancerAvailable bool     `json:"enhancer_available"`
	EnhancerProvider  string   `json:"enhancer_provider"`
	Datasets          []string `json:"datasets"`
}

type infoResponse struct {
	Message           string            `json:"message"`
	Status            string            `json:"status"`
	EnhancerAvailable bool              `json:"enhancer_available"`
	Endpoints         map[string]string `json:"endpoints"`
}
