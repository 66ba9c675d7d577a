package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Analyzer extracts entities and intents from news queries.
type Analyzer struct {
	model  llms.Model
	logger *slog.Logger
}

// NewAnalyzer returns an Analyzer over model. A nil logger means
// slog.Default().
func NewAnalyzer(model llms.Model, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{model: model, logger: logger.With("component", "query-analyzer")}
}

// Analyze asks the model for a JSON analysis of query.
func (a *Analyzer) Analyze(ctx context.Context, query string) (Analysis, error) {
	query = scrub(query)
	text, err := generate(ctx, a.model, queryAnalysisPrompt, query,
		llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		a.logger.Error("query analysis failed", "error", err)
		return Analysis{}, err
	}

	out, err := parseAnalysis(text)
	if err != nil {
		a.logger.Warn("unusable analysis response", "response", text, "error", err)
		return Analysis{}, err
	}
	a.logger.Debug("query analyzed", "entities", len(out.Entities), "intents", strings.Join(out.Intents, ","))
	return out, nil
}

// parseAnalysis decodes model output into an Analysis. Both keys must be
// present; entities must be an object and intents a list of strings.
func parseAnalysis(text string) (Analysis, error) {
	var raw struct {
		Entities json.RawMessage `json:"entities"`
		Intents  json.RawMessage `json:"intents"`
	}
	dec := json.NewDecoder(strings.NewReader(stripFences(text)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if raw.Entities == nil || raw.Intents == nil {
		return Analysis{}, fmt.Errorf("%w: entities and intents are required", ErrMalformedResponse)
	}

	var out Analysis
	ent := json.NewDecoder(strings.NewReader(string(raw.Entities)))
	ent.UseNumber()
	if err := ent.Decode(&out.Entities); err != nil || out.Entities == nil {
		return Analysis{}, fmt.Errorf("%w: entities must be an object", ErrMalformedResponse)
	}
	if err := json.Unmarshal(raw.Intents, &out.Intents); err != nil || out.Intents == nil {
		return Analysis{}, fmt.Errorf("%w: intents must be a list of strings", ErrMalformedResponse)
	}
	return out, nil
}
