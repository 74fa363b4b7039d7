// Package generator provides the text generation backends used to phrase
// branch recommendations, plus the resilience decorators around them.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("generator returned an empty response")

	// ErrCircuitOpen is returned while the provider circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("generator circuit breaker is open")

	// ErrUnknownProvider is returned for an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown generator provider")

	// ErrMissingAPIKey is returned when the selected provider has no API key.
	ErrMissingAPIKey = errors.New("generator API key is not configured")
)

// Generator turns a prompt into free text.
type Generator interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Generate returns the provider's text for prompt. Implementations must
	// abort when ctx is done.
	Generate(ctx context.Context, prompt string) (string, error)
}

// probePrompt is sent by TestConnection.
const probePrompt = "Reply with the single word OK."

// TestConnection sends a short probe prompt and reports whether the provider
// answered with text.
func TestConnection(ctx context.Context, g Generator) error {
	text, err := g.Generate(ctx, probePrompt)
	if err != nil {
		return fmt.Errorf("%s: %w", g.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s: %w", g.Name(), ErrEmptyResponse)
	}
	return nil
}
