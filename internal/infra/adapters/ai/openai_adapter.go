package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"serial-job-applier/internal/config"
	"serial-job-applier/internal/domain/ports/adapter"
	"serial-job-applier/internal/infra/metrics"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.LanguageModel = (*OpenAIAdapter)(nil)

// OpenAIAdapter implements adapter.LanguageModel over the Chat Completions
// API. Any OpenAI-compatible endpoint works via base_url.
type OpenAIAdapter struct {
	client openai.Client
	model  string
}

func NewOpenAIAdapter(cfg *config.AIConfig) (*OpenAIAdapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIAdapter{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Classify buckets text into one of the allowed labels. The reply is matched
// case-insensitively against the allowed set; anything else is returned
// verbatim for the caller to coerce to its default.
func (o *OpenAIAdapter) Classify(ctx context.Context, text string, allowed []string) (string, error) {
	sys := fmt.Sprintf(
		"You are a strict classifier. Reply with exactly one label from this list and nothing else: %s",
		strings.Join(allowed, "; "))

	reply, err := o.chat(ctx, "classify", sys, text)
	if err != nil {
		return "", err
	}
	label := strings.Trim(strings.TrimSpace(reply), `"'.`)
	for _, a := range allowed {
		if strings.EqualFold(label, a) {
			return a, nil
		}
	}
	return label, nil
}

func (o *OpenAIAdapter) Generate(ctx context.Context, prompt string) (string, error) {
	reply, err := o.chat(ctx, "generate", "Answer concisely. Reply with the answer only, no explanation.", prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func (o *OpenAIAdapter) chat(ctx context.Context, op, system, user string) (string, error) {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	metrics.ObserveLLMCall(op, int(time.Since(start).Milliseconds()), err == nil)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}
