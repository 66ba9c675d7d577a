package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"newsingest/internal/config"
	"newsingest/internal/ingest"
	"newsingest/internal/metrics"
	"newsingest/internal/metrics/datadog"
	"newsingest/internal/metrics/prompush"
	"newsingest/internal/storage"
)

// errInvalidConfig is returned after the issues have been printed.
var errInvalidConfig = errors.New("configuration is invalid")

// loadConfig resolves defaults, file, environment, then explicit flags.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("storage", &cfg.Storage.Kind, opts.storageKind)
	set("dsn", &cfg.Storage.DSN, opts.dsn)
	set("table", &cfg.Storage.Table, opts.table)
	set("data-dir", &cfg.Source.Dir, opts.dataDir)
	set("metrics-backend", &cfg.Metrics.Backend, opts.metricsBackend)
	set("pushgateway-url", &cfg.Metrics.PushgatewayURL, opts.pushgatewayURL)
	set("job", &cfg.Job, opts.job)
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", level)
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be text or json", format)
	}
}

// newRecorder builds the metrics recorder. Backend construction failures
// degrade to no metrics rather than failing the run.
func newRecorder(cfg *config.Config, logger *slog.Logger) *metrics.Recorder {
	var (
		b   metrics.Backend
		err error
	)
	switch cfg.Metrics.Backend {
	case config.MetricsPushgateway:
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case config.MetricsDatadog:
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  "newsingest.",
			GlobalTags: []string{"job:" + cfg.Job},
		})
	default:
		return metrics.NewRecorder(cfg.Job, nil)
	}
	if err != nil {
		logger.Warn("metrics backend unavailable; metrics disabled", "backend", cfg.Metrics.Backend, "error", err)
		return metrics.NewRecorder(cfg.Job, nil)
	}
	logger.Debug("metrics enabled", "backend", cfg.Metrics.Backend, "job", cfg.Job)
	return metrics.NewRecorder(cfg.Job, b)
}

// checkConfig prints every issue and fails on error-severity ones.
func checkConfig(w io.Writer, cfg *config.Config) error {
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return errInvalidConfig
	}
	return nil
}

func setup(cmd *cobra.Command, opts *options) (*config.Config, *slog.Logger, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, nil, err
	}
	if err := checkConfig(cmd.ErrOrStderr(), cfg); err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func runIngest(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	logger = logger.With("job", cfg.Job)

	o := ingest.New(ingest.Config{
		Storage: cfg.Storage.StorageConfig(),
		DataDir: cfg.Source.Dir,
		Retry:   cfg.Retry.Policy(logger),
		Logger:  logger,
		Metrics: newRecorder(cfg, logger),
	})
	sum, err := o.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "attempted=%d inserted=%d total_rows=%d files_ok=%d files_failed=%d\n",
		sum.Attempted, sum.Inserted, sum.Total, sum.FilesOK(), sum.FilesFailed())
	return nil
}

func runValidate(cmd *cobra.Command, opts *options) error {
	cfg, _, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "configuration is valid (storage=%s table=%s data_dir=%s)\n",
		cfg.Storage.Kind, cfg.Storage.Table, cfg.Source.Dir)
	return nil
}

func runCount(cmd *cobra.Command, opts *options) error {
	cfg, logger, err := setup(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	repo, err := storage.Connect(ctx, cfg.Storage.StorageConfig(), cfg.Retry.Policy(logger), logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := storage.Count(ctx, repo)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), n)
	return nil
}
