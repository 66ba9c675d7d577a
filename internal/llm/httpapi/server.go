// Package httpapi exposes the query analyzer and summarizer over HTTP.
//
//	POST /process-query  {"query": "..."} -> {"entities": {...}, "intents": [...]}
//	POST /summarize/     {"text": "..."}  -> {"summary": "..."}
//	GET  /healthz
//
// Bad request bodies get 400. Any model failure or unusable model output
// gets 500 with a {"detail": "..."} body.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"newsingest/internal/llm"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// QueryAnalyzer is satisfied by *llm.Analyzer.
type QueryAnalyzer interface {
	Analyze(ctx context.Context, query string) (llm.Analysis, error)
}

// TextSummarizer is satisfied by *llm.Summarizer.
type TextSummarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Server holds the HTTP handlers.
type Server struct {
	analyzer   QueryAnalyzer
	summarizer TextSummarizer
	logger     *slog.Logger
}

// New returns a Server. A nil logger means slog.Default().
func New(a QueryAnalyzer, s TextSummarizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{analyzer: a, summarizer: s, logger: logger}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /process-query", s.handleProcessQuery)
	mux.HandleFunc("POST /summarize/{$}", s.handleSummarize)
	mux.HandleFunc("POST /summarize", s.handleSummarize)
	return mux
}

type queryRequest struct {
	Query *string `json:"query"`
}

type summarizeRequest struct {
	Text *string `json:"text"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcessQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeBody(r, &req); err != nil || req.Query == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: badRequestDetail(err, "query")})
		return
	}

	out, err := s.analyzer.Analyze(r.Context(), *req.Query)
	if err != nil {
		detail := "Failed to process the query with the LLM."
		if errors.Is(err, llm.ErrMalformedResponse) {
			detail = "LLM returned malformed JSON."
		}
		s.logger.Error("process-query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: detail})
		return
	}
	if out.Entities == nil {
		out.Entities = map[string]any{}
	}
	if out.Intents == nil {
		out.Intents = []string{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if err := decodeBody(r, &req); err != nil || req.Text == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: badRequestDetail(err, "text")})
		return
	}

	sum, err := s.summarizer.Summarize(r.Context(), *req.Text)
	if err != nil {
		s.logger.Error("summarize failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Failed to generate summary with the LLM."})
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: sum})
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	return dec.Decode(dst)
}

func badRequestDetail(err error, field string) string {
	if err != nil {
		return "invalid request body: " + strings.TrimPrefix(err.Error(), "json: ")
	}
	return "field required: " + field
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
