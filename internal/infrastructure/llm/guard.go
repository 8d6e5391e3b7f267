package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/saarthi-qa-gateway/internal/core/ports"
	"github.com/kirillkom/saarthi-qa-gateway/internal/infrastructure/resilience"
)

const (
	DefaultTimeout  = 30 * time.Second
	HandshakePrompt = "Say 'Hello' if you're working."
)

// GuardedEnhancer bounds every completion with a timeout and a circuit
// breaker. It makes exactly one attempt per call.
type GuardedEnhancer struct {
	provider string
	next     ports.Enhancer
	executor *resilience.Executor
	timeout  time.Duration
}

func NewGuardedEnhancer(provider string, next ports.Enhancer, executor *resilience.Executor, timeout time.Duration) *GuardedEnhancer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig().SingleAttempt())
	}
	return &GuardedEnhancer{
		provider: provider,
		next:     next,
		executor: executor,
		timeout:  timeout,
	}
}

func (g *GuardedEnhancer) Operation() string {
	return "enhancer." + g.provider
}

func (g *GuardedEnhancer) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := resilience.Call(ctx, g.executor, g.Operation(), func(ctx context.Context) (string, error) {
		return g.next.Complete(ctx, prompt)
	}, ClassifyError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(g.Operation(), err)
	}
	return out, nil
}

// Handshake sends the probe prompt and expects a non-blank reply.
func Handshake(ctx context.Context, enhancer ports.Enhancer, timeout time.Duration) (string, error) {
	if enhancer == nil {
		return "", fmt.Errorf("enhancer not initialized")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	reply, err := enhancer.Complete(ctx, HandshakePrompt)
	if err != nil {
		return "", fmt.Errorf("enhancer handshake: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("enhancer handshake: empty reply")
	}
	return reply, nil
}
