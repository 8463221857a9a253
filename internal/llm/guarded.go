package llm

import (
	"context"

	rankerrors "github.com/aman-health/practitioner-rank/internal/errors"
)

// GuardedClient wraps a Client with the teacher's circuit breaker: after
// repeated consecutive failures the breaker opens and every call short-
// circuits straight to LLMFailure without attempting the network call,
// letting each caller's conservative fallback kick in immediately.
type GuardedClient struct {
	inner   Client
	breaker *rankerrors.CircuitBreaker
	task    string
}

// NewGuardedClient wraps inner with a named circuit breaker. task labels
// the Query Understanding task (or "fit_evaluator") this guard protects,
// for diagnostics.
func NewGuardedClient(inner Client, task string, opts ...rankerrors.CircuitBreakerOption) *GuardedClient {
	return &GuardedClient{
		inner:   inner,
		breaker: rankerrors.NewCircuitBreaker(task, opts...),
		task:    task,
	}
}

// Classify calls the wrapped client unless the breaker is open, in which
// case it returns an LLMFailure error immediately so the caller's fallback
// path runs without waiting on a doomed network call.
func (g *GuardedClient) Classify(ctx context.Context, prompt string) (string, error) {
	result, err := rankerrors.CircuitExecuteWithResult(g.breaker,
		func() (string, error) { return g.inner.Classify(ctx, prompt) },
		func() (string, error) { return "", rankerrors.ErrCircuitOpen },
	)
	if err != nil {
		return "", rankerrors.LLMFailure(g.task, err)
	}
	return result, nil
}

// State exposes the underlying circuit breaker's state for diagnostics.
func (g *GuardedClient) State() rankerrors.State {
	return g.breaker.State()
}
