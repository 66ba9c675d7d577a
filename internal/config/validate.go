package config

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config (e.g. "storage.kind", "retry.max_attempts").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate performs static checks of the settings used by an ingestion run.
// It does not mutate c and never touches the network or filesystem.
func Validate(c *Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics will use the default job name",
		})
	}
	issues = append(issues, validateStorage(c.Storage)...)
	issues = append(issues, validateSource(c.Source)...)
	issues = append(issues, validateRetry(c.Retry)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	return issues
}

// ValidateLLM checks the settings the LLM service needs. Ingestion never
// calls it.
func ValidateLLM(c *Config) []Issue {
	var issues []Issue
	l := c.LLM

	switch l.Provider {
	case ProviderGoogleAI, ProviderOpenAI:
	case "":
		issues = append(issues, Issue{SeverityError, "llm.provider", "llm.provider must not be empty"})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "llm.provider",
			Message:  fmt.Sprintf("unknown provider %q; want %s or %s", l.Provider, ProviderGoogleAI, ProviderOpenAI),
		})
	}
	if strings.TrimSpace(l.APIKey) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "llm.api_key",
			Message:  "an API key is required (GEMINI_API_KEY)",
		})
	}
	if strings.TrimSpace(l.Model) == "" {
		issues = append(issues, Issue{SeverityError, "llm.model", "llm.model must not be empty"})
	}
	if strings.TrimSpace(l.ListenAddr) == "" {
		issues = append(issues, Issue{SeverityError, "llm.listen_addr", "llm.listen_addr must not be empty"})
	}
	if l.BaseURL != "" {
		if _, err := url.ParseRequestURI(l.BaseURL); err != nil {
			issues = append(issues, Issue{SeverityError, "llm.base_url", fmt.Sprintf("invalid URL: %v", err)})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	switch s.Kind {
	case KindPostgres, KindSQLite, KindMSSQL:
	case "":
		return append(issues, Issue{SeverityError, "storage.kind", "storage.kind must not be empty"})
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}

	if strings.TrimSpace(s.Table) == "" {
		issues = append(issues, Issue{SeverityError, "storage.table", "storage.table must not be empty"})
	}
	if s.DSN != "" {
		return issues
	}
	if strings.TrimSpace(s.Name) == "" {
		issues = append(issues, Issue{SeverityError, "storage.name", "database name must not be empty when no DSN is given"})
	}
	if s.Kind == KindSQLite {
		return issues
	}
	if strings.TrimSpace(s.Host) == "" {
		issues = append(issues, Issue{SeverityError, "storage.host", "host must not be empty when no DSN is given"})
	}
	if s.Port <= 0 || s.Port > 65535 {
		issues = append(issues, Issue{SeverityError, "storage.port", fmt.Sprintf("port %d out of range", s.Port)})
	}
	if strings.TrimSpace(s.User) == "" {
		issues = append(issues, Issue{SeverityWarning, "storage.user", "user is empty; the server default will apply"})
	}
	return issues
}

func validateSource(s Source) []Issue {
	if strings.TrimSpace(s.Dir) == "" {
		return []Issue{{SeverityError, "source.dir", "source.dir must not be empty"}}
	}
	return nil
}

func validateRetry(r Retry) []Issue {
	var issues []Issue
	if r.MaxAttempts <= 0 {
		issues = append(issues, Issue{SeverityError, "retry.max_attempts", "max_attempts must be at least 1"})
	}
	if r.BaseDelay < 0 {
		issues = append(issues, Issue{SeverityError, "retry.base_delay", "base_delay must not be negative"})
	}
	if r.Multiplier < 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "retry.multiplier",
			Message:  fmt.Sprintf("multiplier=%g; values below 1 shrink the delay between attempts", r.Multiplier),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", MetricsNone:
	case MetricsPushgateway:
		if m.PushgatewayURL == "" {
			return []Issue{{SeverityError, "metrics.pushgateway_url", "pushgateway backend requires PUSHGATEWAY_URL"}}
		}
	case MetricsDatadog:
		if m.DatadogAddr == "" {
			return []Issue{{SeverityError, "metrics.datadog_addr", "datadog backend requires DD_AGENT_ADDR"}}
		}
	default:
		return []Issue{{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", m.Backend),
		}}
	}
	return nil
}
