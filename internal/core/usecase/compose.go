package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/domain"
	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
)

const (
	DefaultPromptSourceLimit         = 3
	DefaultGeneralGuidanceConfidence = 0.5
)

var errEmptyCompletion = errors.New("enhancer returned empty completion")

type ComposerPolicy struct {
	// PromptSourceLimit bounds how many sources are rendered into the prompt.
	// The outward envelope always carries the full list.
	PromptSourceLimit int
	// GeneralGuidanceConfidence is reported for enhanced answers that had no
	// retrieved sources behind them.
	GeneralGuidanceConfidence float64
	Profile                   domain.PromptProfile
}

func DefaultComposerPolicy() ComposerPolicy {
	return ComposerPolicy{
		PromptSourceLimit:         DefaultPromptSourceLimit,
		GeneralGuidanceConfidence: DefaultGeneralGuidanceConfidence,
		Profile:                   domain.DefaultPromptProfile(),
	}
}

func (p ComposerPolicy) normalize() ComposerPolicy {
	out := p
	if out.PromptSourceLimit <= 0 {
		out.PromptSourceLimit = DefaultPromptSourceLimit
	}
	if math.IsNaN(out.GeneralGuidanceConfidence) || out.GeneralGuidanceConfidence < 0 || out.GeneralGuidanceConfidence > 1 {
		out.GeneralGuidanceConfidence = DefaultGeneralGuidanceConfidence
	}
	out.Profile = out.Profile.WithDefaults()
	return out
}

// Composer merges retrieval output and an optional enhancer completion into
// one EnhancedResponse. It never returns an error.
type Composer struct {
	enhancer   ports.Enhancer
	capability domain.EnhancerCapability
	policy     ComposerPolicy
}

func NewComposer(enhancer ports.Enhancer, capability domain.EnhancerCapability, policy ComposerPolicy) *Composer {
	if enhancer == nil {
		capability.Ready = false
	}
	return &Composer{
		enhancer:   enhancer,
		capability: capability,
		policy:     policy.normalize(),
	}
}

func (c *Composer) Capability() domain.EnhancerCapability {
	return c.capability
}

func (c *Composer) Policy() ComposerPolicy {
	return c.policy
}

func (c *Composer) Compose(
	ctx context.Context,
	question string,
	retrieval domain.RetrievalResult,
	useEnhancer bool,
) domain.Composition {
	if !useEnhancer || !c.capability.Ready {
		return domain.Composition{
			Response: directResponse(retrieval),
			Outcome:  domain.OutcomeDirect,
		}
	}

	hasData := retrieval.HasData()
	prompt := buildEnhancementPrompt(c.policy.Profile, question, retrieval.Sources, c.policy.PromptSourceLimit)

	completion, err := c.complete(ctx, prompt)
	if err != nil {
		return domain.Composition{
			Response: c.fallbackResponse(retrieval),
			Outcome:  domain.OutcomeFallback,
			Cause:    err,
		}
	}

	confidence := c.policy.GeneralGuidanceConfidence
	if hasData {
		confidence = domain.ClampConfidence(retrieval.Confidence)
	}
	return domain.Composition{
		Response: domain.EnhancedResponse{
			Answer:          completion,
			Confidence:      confidence,
			Sources:         sourcesOrEmpty(retrieval.Sources),
			AIEnhanced:      true,
			GeneralGuidance: domain.BoolPtr(!hasData),
		},
		Outcome: domain.OutcomeEnhanced,
	}
}

// complete runs one enhancer attempt. Panics and blank completions count as failures.
func (c *Composer) complete(ctx context.Context, prompt string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("enhancer panic: %v", r)
		}
	}()

	out, err := c.enhancer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", errEmptyCompletion
	}
	return out, nil
}

func (c *Composer) fallbackResponse(retrieval domain.RetrievalResult) domain.EnhancedResponse {
	answer := retrieval.Answer
	if strings.TrimSpace(answer) == "" {
		answer = c.policy.Profile.Render(c.policy.Profile.FallbackAnswer)
	}
	return domain.EnhancedResponse{
		Answer:     answer,
		Confidence: domain.ClampConfidence(retrieval.Confidence),
		Sources:    sourcesOrEmpty(retrieval.Sources),
		AIEnhanced: false,
		Fallback:   domain.BoolPtr(true),
	}
}

func directResponse(retrieval domain.RetrievalResult) domain.EnhancedResponse {
	return domain.EnhancedResponse{
		Answer:     retrieval.Answer,
		Confidence: domain.ClampConfidence(retrieval.Confidence),
		Sources:    sourcesOrEmpty(retrieval.Sources),
		AIEnhanced: false,
	}
}

func sourcesOrEmpty(sources []domain.SourceSnippet) []domain.SourceSnippet {
	if sources == nil {
		return []domain.SourceSnippet{}
	}
	return sources
}
