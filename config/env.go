package config

import (
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvEndpoint        = "SPARQLEXPORT_ENDPOINT"
	EnvFormat          = "SPARQLEXPORT_FORMAT"
	EnvOutput          = "SPARQLEXPORT_OUTPUT"
	EnvQueryFile       = "SPARQLEXPORT_QUERY_FILE"
	EnvTimeout         = "SPARQLEXPORT_TIMEOUT"
	EnvLocale          = "SPARQLEXPORT_LOCALE"
	EnvLogLevel        = "SPARQLEXPORT_LOG_LEVEL"
	EnvMetricsTextfile = "SPARQLEXPORT_METRICS_TEXTFILE"
)

// envRefRe matches ${VAR} and ${VAR:-default}. Bare $VAR is left alone
// because SPARQL uses it for variables.
var envRefRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// ExpandEnvWithDefaults expands ${VAR} and ${VAR:-default} references.
// Unset variables without a default expand to the empty string.
func ExpandEnvWithDefaults(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(ref string) string {
		m := envRefRe.FindStringSubmatch(ref)
		if v := os.Getenv(m[1]); v != "" {
			return v
		}
		return m[3]
	})
}

// ApplyEnv overrides config values from SPARQLEXPORT_* environment variables.
// Malformed values are logged and ignored.
func (c *Config) ApplyEnv(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint.URL = v
	}
	if v := os.Getenv(EnvFormat); v != "" {
		c.Format = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv(EnvQueryFile); v != "" {
		c.Query.File = v
		c.Query.Text = ""
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if d, err := parseTimeout(v); err == nil {
			c.Endpoint.Timeout = d
		} else {
			logger.Warn("Ignoring invalid timeout", slog.String("env", EnvTimeout), slog.String("value", v))
		}
	}
	if v := os.Getenv(EnvLocale); v != "" {
		c.Output.Locale = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvMetricsTextfile); v != "" {
		c.Metrics.Textfile = v
	}
}

// parseTimeout accepts a Go duration ("90s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
