package llm

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Summarizer condenses free text with a model.
type Summarizer struct {
	model  llms.Model
	logger *slog.Logger
}

// NewSummarizer returns a Summarizer over model.
func NewSummarizer(model llms.Model, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{model: model, logger: logger.With("component", "summarizer")}
}

// Summarize returns the model's summary of text. There is no length or
// format contract beyond a string.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := generate(ctx, s.model, summarizationPrompt, scrub(text), llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("summarization failed", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}
