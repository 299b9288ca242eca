package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvEndpoint, EnvFormat, EnvOutput, EnvQueryFile,
		EnvTimeout, EnvLocale, EnvLogLevel, EnvMetricsTextfile,
	} {
		// t.Setenv restores the previous value after the test.
		t.Setenv(name, "")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoaderLayering(t *testing.T) {
	clearEnv(t)

	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "nested", "deeper")
	require.NoError(t, os.MkdirAll(work, 0755))

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
output:
  path: "/user/out.nt"
  locale: en
endpoint:
  timeout: 5m
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
output:
  path: "/project/out.nt"
`)

	l := NewLoader(nil)
	l.homeDir = home
	l.workDir = work

	cfg, err := l.Load("")
	require.NoError(t, err)

	// Project layer wins for path; user layer survives where project is silent.
	assert.Equal(t, "/project/out.nt", cfg.Output.Path)
	assert.Equal(t, "en", cfg.Output.Locale)
	assert.Equal(t, 5*time.Minute, cfg.Endpoint.Timeout)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint.URL)
}

func TestLoaderExplicitFileAndEnv(t *testing.T) {
	clearEnv(t)

	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, explicit, `
format: turtle
output:
  path: "/explicit/out.ttl"
`)

	t.Setenv(EnvOutput, "/env/out.ttl")
	t.Setenv(EnvTimeout, "15")

	l := NewLoader(nil)
	l.homeDir = t.TempDir()
	l.workDir = t.TempDir()

	cfg, err := l.Load(explicit)
	require.NoError(t, err)

	assert.Equal(t, "turtle", cfg.Format)
	assert.Equal(t, "/env/out.ttl", cfg.Output.Path)
	assert.Equal(t, 15*time.Second, cfg.Endpoint.Timeout)
}

func TestLoaderMissingExplicitFile(t *testing.T) {
	clearEnv(t)

	l := NewLoader(nil)
	l.homeDir = t.TempDir()
	l.workDir = t.TempDir()

	_, err := l.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoaderBrokenProjectConfigIsSkipped(t *testing.T) {
	clearEnv(t)

	work := t.TempDir()
	writeFile(t, filepath.Join(work, ProjectConfigFile), "output: [")

	l := NewLoader(nil)
	l.homeDir = t.TempDir()
	l.workDir = work

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputPath, cfg.Output.Path)
}

func TestEnsureUserConfig(t *testing.T) {
	l := NewLoader(nil)
	l.homeDir = t.TempDir()

	path, err := l.EnsureUserConfig()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(l.homeDir, UserConfigDir, UserConfigFile), path)

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)

	// Second call leaves an existing file alone.
	writeFile(t, path, "format: turtle\n")
	_, err = l.EnsureUserConfig()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "format: turtle\n", string(data))
}
