package adapter

import "context"

// LanguageModel is the classification capability. The inference engine is an
// external collaborator; only these two operations are consumed.
type LanguageModel interface {
	// Classify buckets text into one of the allowed labels. Callers must
	// treat any out-of-enumeration reply as the default label.
	Classify(ctx context.Context, text string, allowed []string) (string, error)
	// Generate produces free text for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}
