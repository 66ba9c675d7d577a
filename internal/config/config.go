// Package config defines the configuration model shared by the ingestion CLI
// and the LLM service.
//
// Values are resolved in layers: built-in defaults, then an optional YAML file,
// then environment variables, then command-line flags (applied by cmd/).
//
// Example file (trimmed):
//
//	job: nightly-news
//	storage:
//	  kind: postgres
//	  host: db.internal
//	  name: newsdb
//	source:
//	  dir: /srv/news/data
//	retry:
//	  max_attempts: 5
//	  base_delay: 2s
package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"newsingest/internal/retry"
	"newsingest/internal/storage"

	"gopkg.in/yaml.v3"
)

// Storage kinds known to the CLI.
const (
	KindPostgres = "postgres"
	KindSQLite   = "sqlite"
	KindMSSQL    = "mssql"
)

// Metrics backends.
const (
	MetricsNone        = "none"
	MetricsPushgateway = "pushgateway"
	MetricsDatadog     = "datadog"
)

// LLM providers.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
)

// Config is the root configuration.
type Config struct {
	// Job labels metrics and log lines for a run.
	Job     string  `yaml:"job" json:"job"`
	Storage Storage `yaml:"storage" json:"storage"`
	Source  Source  `yaml:"source" json:"source"`
	Retry   Retry   `yaml:"retry" json:"retry"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
	LLM     LLM     `yaml:"llm" json:"llm"`
}

// Storage selects the backend and how to reach it. DSN wins over the
// individual connection parts when set.
type Storage struct {
	Kind     string `yaml:"kind" json:"kind"`
	DSN      string `yaml:"dsn" json:"dsn"`
	Table    string `yaml:"table" json:"table"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
}

// Source points at the directory holding the *.json data files.
type Source struct {
	Dir string `yaml:"dir" json:"dir"`
}

// Retry configures connection establishment.
type Retry struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	Multiplier  float64       `yaml:"multiplier" json:"multiplier"`
}

// Metrics selects where run metrics are sent.
type Metrics struct {
	Backend        string `yaml:"backend" json:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr" json:"datadog_addr"`
}

// LLM configures the query understanding and summarization service.
type LLM struct {
	Provider   string `yaml:"provider" json:"provider"`
	Model      string `yaml:"model" json:"model"`
	APIKey     string `yaml:"api_key" json:"-"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

// Default returns a Config with the documented defaults.
func Default() *Config {
	p := retry.Default()
	return &Config{
		Job: "newsingest",
		Storage: Storage{
			Kind:     KindPostgres,
			Table:    storage.DefaultTable,
			Host:     "localhost",
			Port:     5432,
			Name:     "newsdb",
			User:     "news",
			Password: "secret",
		},
		Source: Source{Dir: "data"},
		Retry: Retry{
			MaxAttempts: p.MaxAttempts,
			BaseDelay:   p.BaseDelay,
			Multiplier:  p.Multiplier,
		},
		Metrics: Metrics{Backend: MetricsNone},
		LLM: LLM{
			Provider:   ProviderGoogleAI,
			Model:      "gemini-2.0-flash",
			ListenAddr: ":8000",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty) and the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides c with environment variables found through lookup.
// Empty values are ignored. Malformed numbers and durations are errors.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	str("STORAGE_KIND", &c.Storage.Kind)
	str("DB_DSN", &c.Storage.DSN)
	str("DB_TABLE", &c.Storage.Table)
	str("DB_HOST", &c.Storage.Host)
	str("DB_NAME", &c.Storage.Name)
	str("DB_USER", &c.Storage.User)
	str("DB_PASSWORD", &c.Storage.Password)
	str("DATA_DIR", &c.Source.Dir)
	str("METRICS_BACKEND", &c.Metrics.Backend)
	str("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)
	str("DD_AGENT_ADDR", &c.Metrics.DatadogAddr)
	str("GEMINI_API_KEY", &c.LLM.APIKey)
	str("LLM_PROVIDER", &c.LLM.Provider)
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_LISTEN_ADDR", &c.LLM.ListenAddr)

	if v, ok := get("DB_PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_PORT: %w", err)
		}
		c.Storage.Port = n
	}
	if v, ok := get("DB_CONNECT_MAX_ATTEMPTS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_MAX_ATTEMPTS: %w", err)
		}
		c.Retry.MaxAttempts = n
	}
	if v, ok := get("DB_CONNECT_BASE_DELAY"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_BASE_DELAY: %w", err)
		}
		c.Retry.BaseDelay = d
	}
	if v, ok := get("DB_CONNECT_BACKOFF_MULTIPLIER"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_BACKOFF_MULTIPLIER: %w", err)
		}
		c.Retry.Multiplier = f
	}
	return nil
}

// ResolvedDSN returns the explicit DSN, or one derived from the connection
// parts for the configured kind.
func (s Storage) ResolvedDSN() string {
	if s.DSN != "" {
		return s.DSN
	}
	hostPort := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	switch s.Kind {
	case KindSQLite:
		return s.Name + ".db"
	case KindMSSQL:
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(s.User, s.Password),
			Host:     hostPort,
			RawQuery: url.Values{"database": {s.Name}}.Encode(),
		}
		return u.String()
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(s.User, s.Password),
			Host:   hostPort,
			Path:   "/" + s.Name,
		}
		return u.String()
	}
}

// StorageConfig maps the section onto the storage factory input.
func (s Storage) StorageConfig() storage.Config {
	return storage.Config{Kind: s.Kind, DSN: s.ResolvedDSN(), Table: s.Table}
}

// Policy returns the retry policy for connection establishment.
func (r Retry) Policy(logger *slog.Logger) retry.Policy {
	return retry.Policy{
		MaxAttempts: r.MaxAttempts,
		BaseDelay:   r.BaseDelay,
		Multiplier:  r.Multiplier,
		Logger:      logger,
	}
}
