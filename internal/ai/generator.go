// Package ai defines the capability interface for the narrative generator.
// Callers treat every failure as a normal degraded outcome.
package ai

import (
	"context"
	"time"

	"github.com/career-pathfinder/pathfinder/internal/utils"
)

// Generator produces free text for a prompt. Implementations may fail or
// time out; callers must preserve their prior state when that happens.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout bounds every Generate call with the given timeout. A
// non-positive timeout returns the generator unchanged.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return g
	}
	return &timeoutGenerator{inner: g, timeout: timeout}
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, prompt)
}

type retryGenerator struct {
	inner    Generator
	attempts int
	delay    time.Duration
}

// WithRetries retries failed Generate calls up to attempts times, waiting
// delay between tries. Fewer than two attempts returns the generator
// unchanged.
func WithRetries(g Generator, attempts int, delay time.Duration) Generator {
	if attempts < 2 {
		return g
	}
	return &retryGenerator{inner: g, attempts: attempts, delay: delay}
}

func (r *retryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			if err := utils.WaitFor(ctx, r.delay); err != nil {
				return "", err
			}
		}
		text, err := r.inner.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", lastErr
}
