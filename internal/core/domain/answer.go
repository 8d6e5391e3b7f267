package domain

// Outcome names the path the composer took for a question.
type Outcome string

const (
	OutcomeDirect   Outcome = "direct"
	OutcomeEnhanced Outcome = "enhanced"
	OutcomeFallback Outcome = "fallback"
)

// EnhancedResponse is the composed answer. GeneralGuidance is set only on
// the enhanced path and Fallback only on the fallback path.
type EnhancedResponse struct {
	Answer          string          `json:"answer"`
	Confidence      float64         `json:"confidence"`
	Sources         []SourceSnippet `json:"sources"`
	AIEnhanced      bool            `json:"ai_enhanced"`
	GeneralGuidance *bool           `json:"general_guidance,omitempty"`
	Fallback        *bool           `json:"fallback,omitempty"`
}

func (r EnhancedResponse) IsFallback() bool {
	return r.Fallback != nil && *r.Fallback
}

func (r EnhancedResponse) IsGeneralGuidance() bool {
	return r.GeneralGuidance != nil && *r.GeneralGuidance
}

// Composition is the single result of composing one answer. Cause carries the
// enhancer failure on the fallback path and is never surfaced to callers.
type Composition struct {
	Response EnhancedResponse
	Outcome  Outcome
	Cause    error
}

// EnhancerCapability is decided once at startup and read-only afterwards.
type EnhancerCapability struct {
	Ready    bool   `json:"ready"`
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// QueryRequest is an inbound question.
type QueryRequest struct {
	Question    string
	TopK        int
	UseEnhancer bool
}

// QueryResult pairs the composition with retrieval bookkeeping.
type QueryResult struct {
	Question    string
	Composition Composition
	NumResults  int
}

// QueryEvent is published after a question has been answered.
type QueryEvent struct {
	ID         string  `json:"id"`
	Question   string  `json:"question"`
	Outcome    Outcome `json:"outcome"`
	Confidence float64 `json:"confidence"`
	NumSources int     `json:"num_sources"`
	NumResults int     `json:"num_results"`
	DurationMS float64 `json:"duration_ms"`
	AnsweredAt string  `json:"answered_at"`
}

func BoolPtr(v bool) *bool {
	return &v
}
