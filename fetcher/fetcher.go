// Package fetcher runs a single SPARQL export: one CONSTRUCT query posted to
// the endpoint, the buffered response written to the dataset file, one
// confirmation line on stdout.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/sparqlexport/config"
	"github.com/c360studio/sparqlexport/export"
	"github.com/c360studio/sparqlexport/source/sparql"
)

// confirmations are printed after a successful write, keyed by locale.
var confirmations = map[string]string{
	"ru": "Данные сохранены в %s",
	"en": "Data saved to %s",
}

// Fetcher performs the export described by a config.Config.
type Fetcher struct {
	cfg     *config.Config
	client  *sparql.Client
	stdout  io.Writer
	logger  *slog.Logger
	metrics *runMetrics
	now     func() time.Time
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithStdout sets where the confirmation line is printed (default os.Stdout).
func WithStdout(w io.Writer) Option {
	return func(f *Fetcher) { f.stdout = w }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithClient replaces the SPARQL client built from the config.
func WithClient(c *sparql.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// New creates a Fetcher for cfg. The config is validated here so that Run
// only fails on the network or the filesystem.
func New(cfg *config.Config, opts ...Option) (*Fetcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	f := &Fetcher{
		cfg:     cfg,
		stdout:  os.Stdout,
		logger:  slog.Default(),
		metrics: newRunMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = sparql.NewClient(sparql.ClientOptions{
			Timeout:         cfg.Endpoint.Timeout,
			UserAgent:       cfg.Endpoint.UserAgent,
			MaxResponseSize: cfg.Endpoint.MaxResponseSize,
		})
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.stdout == nil {
		f.stdout = io.Discard
	}

	return f, nil
}

// Run executes the export once.
//
// The output file is only opened after the whole response has been read
// and its status checked, so a failed request leaves any previous dataset
// untouched. Nothing is printed to stdout unless the write succeeded.
func (f *Fetcher) Run(ctx context.Context) error {
	logger := f.logger.With("run_id", uuid.NewString())

	outcome := outcomeSuccess
	defer func() {
		f.metrics.runs.WithLabelValues(outcome).Inc()
		f.flushMetrics(logger)
	}()

	query, err := sparql.ResolveQuery(f.cfg.Query.Text, f.cfg.Query.File)
	if err != nil {
		outcome = outcomeConfigError
		return fmt.Errorf("resolve query: %w", err)
	}

	format, err := export.ResolveFormat(f.cfg.Format)
	if err != nil {
		outcome = outcomeConfigError
		return fmt.Errorf("resolve format: %w", err)
	}

	logger.Info("Fetching dataset",
		"endpoint", f.cfg.Endpoint.URL,
		"format", format.MIMEType,
		"output", f.cfg.Output.Path)

	res, err := f.client.Construct(ctx, f.cfg.Endpoint.URL, sparql.Request{
		Query:  query,
		Format: format.MIMEType,
	})
	if err != nil {
		switch {
		case sparql.IsStatusError(err):
			outcome = outcomeStatusError
		default:
			outcome = outcomeNetworkError
		}
		logger.Error("Endpoint request failed", "error", err)
		return fmt.Errorf("fetch dataset: %w", err)
	}

	f.metrics.fetchDuration.WithLabelValues(formatLabel(format)).Observe(res.Duration.Seconds())
	logger.Debug("Response received",
		"status", res.StatusCode,
		"content_type", res.ContentType,
		"bytes", len(res.Body),
		"duration", res.Duration)

	if len(res.Body) == 0 {
		logger.Warn("Endpoint returned an empty body", "status", res.StatusCode)
	}

	if err := export.WriteDataset(f.cfg.Output.Path, res.Body); err != nil {
		outcome = outcomeWriteError
		logger.Error("Dataset write failed", "error", err)
		return err
	}

	f.metrics.responseBytes.Set(float64(len(res.Body)))
	f.metrics.lastSuccess.Set(float64(f.now().Unix()))

	logger.Info("Dataset saved",
		"path", f.cfg.Output.Path,
		"bytes", len(res.Body),
		"duration", res.Duration)

	if _, err := fmt.Fprintln(f.stdout, Confirmation(f.cfg.Output.Locale, f.cfg.Output.Path)); err != nil {
		logger.Warn("Failed to print confirmation", "error", err)
	}

	return nil
}

// Confirmation returns the success line for locale, naming the dataset file.
// Unknown locales fall back to Russian.
func Confirmation(locale, path string) string {
	tmpl, ok := confirmations[locale]
	if !ok {
		tmpl = confirmations[config.DefaultLocale]
	}
	return fmt.Sprintf(tmpl, filepath.Base(path))
}

func (f *Fetcher) flushMetrics(logger *slog.Logger) {
	if f.cfg.Metrics.Textfile == "" {
		return
	}
	if err := f.metrics.writeTextfile(f.cfg.Metrics.Textfile); err != nil {
		logger.Warn("Failed to write metrics textfile", "path", f.cfg.Metrics.Textfile, "error", err)
		return
	}
	logger.Debug("Metrics textfile written", "path", f.cfg.Metrics.Textfile)
}

func formatLabel(info export.FormatInfo) string {
	if info.Name != "" {
		return string(info.Name)
	}
	return info.MIMEType
}
