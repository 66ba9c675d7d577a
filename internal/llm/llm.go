// Package llm implements the query understanding and summarization
// collaborators of the news retrieval system on top of langchaingo models.
//
// Both services make exactly one model call per request. Model failures are
// reported as ErrUnavailable and unusable output as ErrMalformedResponse;
// neither is retried.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrMalformedResponse means the model answered but the answer does not
	// have the expected shape.
	ErrMalformedResponse = errors.New("llm: malformed model response")
	// ErrUnavailable wraps failures of the model call itself.
	ErrUnavailable = errors.New("llm: model unavailable")
)

// Providers accepted by NewModel.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Intent labels the analyzer is prompted with. Models may return others;
// they are passed through.
const (
	IntentNearby   = "nearby"
	IntentCategory = "category"
	IntentSource   = "source"
	IntentTrending = "trending"
	IntentGeneral  = "general"
	IntentSearch   = "search"
)

var knownIntents = map[string]struct{}{
	IntentNearby: {}, IntentCategory: {}, IntentSource: {},
	IntentTrending: {}, IntentGeneral: {}, IntentSearch: {},
}

// KnownIntent reports whether s is one of the prompted intent labels.
func KnownIntent(s string) bool {
	_, ok := knownIntents[s]
	return ok
}

// Analysis is the structured reading of a free-text news query. Entity keys
// seen in practice are source_name, category, lat, lon, search_query and
// score, but the set is open.
type Analysis struct {
	Entities map[string]any `json:"entities"`
	Intents  []string       `json:"intents"`
}

// ModelConfig selects a hosted model.
type ModelConfig struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the endpoint of OpenAI-compatible providers.
	BaseURL string
}

// NewModel builds the langchaingo model for cfg.
func NewModel(ctx context.Context, cfg ModelConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required for provider %q", cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderGoogleAI, "":
		m, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("llm: googleai client: %w", err)
		}
		return m, nil
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("llm: openai client: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// generate makes one model call with a system instruction and returns the
// first choice's text.
func generate(ctx context.Context, m llms.Model, system, user string, opts ...llms.CallOption) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
	resp, err := m.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}
	return resp.Choices[0].Content, nil
}
