package ai

import (
	"context"

	"serial-job-applier/internal/domain/ports/adapter"
)

// Compile-time check
var _ adapter.LanguageModel = (*limitedAI)(nil)

type limitedAI struct {
	inner adapter.LanguageModel
	sem   chan struct{}
}

// NewLimitedAI caps in-flight calls to the inference backend.
func NewLimitedAI(inner adapter.LanguageModel, maxConcurrent int) adapter.LanguageModel {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedAI{
		inner: inner,
		sem:   make(chan struct{}, maxConcurrent),
	}
}

func (l *limitedAI) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Classify(ctx, text, allowed)
}

func (l *limitedAI) Generate(ctx context.Context, prompt string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()
	return l.inner.Generate(ctx, prompt)
}
