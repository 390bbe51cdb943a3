package ai

import (
	"context"

	"serial-job-applier/internal/domain/ports/adapter"
)

var _ adapter.LanguageModel = (*NoopAIAdapter)(nil)

// NoopAIAdapter stands in when no API key is configured. Classification
// always falls through to the caller's default label, and generation yields
// an empty answer so form fields fall back to profile/default values.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter { return &NoopAIAdapter{} }

func (a *NoopAIAdapter) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	return "", nil
}

func (a *NoopAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
