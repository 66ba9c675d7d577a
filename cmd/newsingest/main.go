// Command newsingest loads news article JSON files into the article store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	// register all backends with the storage factory.
	_ "newsingest/internal/storage/all"
)

// options are the flags shared by every subcommand. Flags override the
// config file and environment only when set explicitly.
type options struct {
	cfgFile   string
	logLevel  string
	logFormat string

	storageKind string
	dsn         string
	table       string
	dataDir     string

	metricsBackend string
	pushgatewayURL string
	job            string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "newsingest",
		Short:         "Ingest news article JSON files into PostGIS",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "YAML config file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format (text, json)")
	pf.StringVar(&opts.storageKind, "storage", "", "storage backend (postgres, sqlite, mssql)")
	pf.StringVar(&opts.dsn, "dsn", "", "explicit connection string (overrides DB_* parts)")
	pf.StringVar(&opts.table, "table", "", "article table name")

	root.AddCommand(ingestCmd(opts))
	root.AddCommand(validateCmd(opts))
	root.AddCommand(countCmd(opts))
	return root
}

func ingestCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load every *.json file of the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.dataDir, "data-dir", "", "directory holding the article files")
	cmd.Flags().StringVar(&opts.metricsBackend, "metrics-backend", "", "metrics backend (none, pushgateway, datadog)")
	cmd.Flags().StringVar(&opts.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL")
	cmd.Flags().StringVar(&opts.job, "job", "", "job name used for metrics")
	return cmd
}

func validateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the resolved configuration and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts)
		},
	}
}

func countCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of stored articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd, opts)
		},
	}
}
