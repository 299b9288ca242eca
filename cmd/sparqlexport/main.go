// Package main provides the sparqlexport binary entry point.
// sparqlexport runs a SPARQL CONSTRUCT query against a linked-data endpoint
// and saves the serialized graph to a local file.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/sparqlexport/config"
	"github.com/c360studio/sparqlexport/export"
	"github.com/c360studio/sparqlexport/fetcher"
	"github.com/c360studio/sparqlexport/source/sparql"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "sparqlexport"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runFlags holds the root command's flags. Only flags the user actually set
// override the loaded config.
type runFlags struct {
	configPath  string
	endpoint    string
	format      string
	output      string
	queryFile   string
	timeout     time.Duration
	locale      string
	metricsFile string
	logLevel    string
}

func rootCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Export an RDF dataset from a SPARQL endpoint",
		Long: `sparqlexport posts a SPARQL CONSTRUCT query to a linked-data endpoint
and writes the response, byte for byte, to a local file.

By default it exports Nobel laureates and their prizes from
https://data.nobelprize.org/sparql as N-Triples into nobel_prizes.nt.

Configuration is layered: defaults, ~/.config/sparqlexport/config.yaml,
sparqlexport.yaml in the working directory or a parent, --config,
SPARQLEXPORT_* environment variables, then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "SPARQL endpoint URL")
	cmd.Flags().StringVar(&flags.format, "format", "", "Serialization name or MIME type (see 'formats')")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&flags.queryFile, "query-file", "", "File containing the CONSTRUCT query")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "HTTP timeout (e.g. 90s)")
	cmd.Flags().StringVar(&flags.locale, "locale", "", "Confirmation message locale (ru, en)")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "Prometheus textfile written after the run")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(versionCmd(), formatsCmd(), queryCmd(), initConfigCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List known RDF serializations",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, f := range export.ListFormats() {
				fmt.Fprintf(out, "%-10s %-24s %-8s %s\n", f.Name, f.MIMEType, f.Extension, f.Description)
			}
		},
	}
}

func queryCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the CONSTRUCT query that would be sent",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), "warn")
			cfg, err := config.NewLoader(logger).Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			q, err := sparql.ResolveQuery(cfg.Query.Text, cfg.Query.File)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), q)
			if !strings.HasSuffix(q, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	return cmd
}

func initConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a default config file",
		Long: `Write a config file holding the defaults. Without a path the user
config (~/.config/sparqlexport/config.yaml) is created if missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), "info")
			if len(args) == 0 {
				path, err := config.NewLoader(logger).EnsureUserConfig()
				if err != nil {
					return fmt.Errorf("create user config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			}

			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

func run(cmd *cobra.Command, flags runFlags) error {
	// Flags are applied after loading, so the bootstrap logger only knows
	// about --log-level.
	bootLevel := flags.logLevel
	if bootLevel == "" {
		bootLevel = "info"
	}
	cfg, err := config.NewLoader(newLogger(cmd.ErrOrStderr(), bootLevel)).Load(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	applyFlags(cmd, cfg, flags)

	logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Level)
	slog.SetDefault(logger)

	f, err := fetcher.New(cfg,
		fetcher.WithStdout(cmd.OutOrStdout()),
		fetcher.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return f.Run(ctx)
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, flags runFlags) {
	changed := cmd.Flags().Changed

	if changed("endpoint") {
		cfg.Endpoint.URL = flags.endpoint
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("output") {
		cfg.Output.Path = flags.output
	}
	if changed("query-file") {
		cfg.Query.File = flags.queryFile
		cfg.Query.Text = ""
	}
	if changed("timeout") {
		cfg.Endpoint.Timeout = flags.timeout
	}
	if changed("locale") {
		cfg.Output.Locale = flags.locale
	}
	if changed("metrics-file") {
		cfg.Metrics.Textfile = flags.metricsFile
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
}

// newLogger builds the text logger shared by all commands.
func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
