// Package llm abstracts the text-generation collaborator behind one
// interface. The pipeline never sees a concrete backend; the factory picks
// one from configuration.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/saifaddin/tadabbur-backend/internal/config"
)

// Client sends one prompt and returns the raw response text.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Sentinel errors. Backends wrap these with backend-specific context.
var (
	// ErrUnavailable: the collaborator could not be reached or the API
	// call failed.
	ErrUnavailable = errors.New("generation backend unavailable")
	// ErrTimeout: the bounded per-call wait elapsed.
	ErrTimeout = errors.New("generation timed out")
	// ErrEmpty: the backend answered but produced no usable text.
	ErrEmpty = errors.New("generation returned no content")
)

// New builds the client selected by cfg.Backend and, when cfg.MaxAttempts
// is greater than one, layers the bounded retry wrapper around it.
func New(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.Backend {
	case config.LLMBackendAnthropic:
		client = NewAnthropic(cfg)
	case config.LLMBackendGemini:
		client, err = NewGemini(ctx, cfg)
	case config.LLMBackendOpenAI:
		client = NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("llm: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.MaxAttempts > 1 {
		client = WithRetry(client, cfg.MaxAttempts, cfg.RetryWait)
	}
	return client, nil
}

// mapCallError classifies a backend call failure: a deadline hit becomes
// ErrTimeout, everything else ErrUnavailable.
func mapCallError(backend string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", backend, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", backend, ErrUnavailable, err)
}
