package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 4000, cfg.Summary.ChunkSize)
	require.Equal(t, 200, cfg.Summary.ChunkOverlap)
	require.Equal(t, 150, cfg.Summary.DefaultWordCount)
	require.Equal(t, 250, cfg.Summary.WordsPerPage)
	require.Equal(t, "llama3", cfg.LLM.Model)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty address", mutate: func(c *Config) { c.HTTP.Address = "" }, wantErr: "http.address"},
		{name: "overlap too large", mutate: func(c *Config) { c.Summary.ChunkOverlap = c.Summary.ChunkSize }, wantErr: "chunkOverlap"},
		{name: "unknown policy", mutate: func(c *Config) { c.Summary.FailurePolicy = "retry" }, wantErr: "failurePolicy"},
		{name: "valkey without addr", mutate: func(c *Config) { c.HTTP.RateLimit.Backend = "valkey" }, wantErr: "valkeyAddr"},
		{name: "unknown backend", mutate: func(c *Config) { c.HTTP.RateLimit.Backend = "memcached" }, wantErr: "backend"},
		{name: "empty model", mutate: func(c *Config) { c.LLM.Model = " " }, wantErr: "llm.model"},
		{name: "bad breaker threshold", mutate: func(c *Config) { c.LLM.Breaker.FailureThreshold = 2 }, wantErr: "failureThreshold"},
		{name: "no upload budget", mutate: func(c *Config) { c.Summary.MaxUploadBytes = 0 }, wantErr: "maxUploadBytes"},
		{name: "disabled rate limit skips checks", mutate: func(c *Config) {
			c.HTTP.RateLimit.Enabled = false
			c.HTTP.RateLimit.Burst = 0
		}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadAppliesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := `
http:
  address: ":9000"
summary:
  chunkSize: 2000
  chunkOverlap: 100
  failurePolicy: drop
llm:
  model: gpt-4o-mini
  timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("ENV_FILE", "")
	t.Setenv("LLM_MODEL", "llama3.1")
	t.Setenv("SUMMARY_MAX_CONCURRENCY", "4")
	t.Setenv("HTTP_CORS_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTP.Address)
	require.Equal(t, 2000, cfg.Summary.ChunkSize)
	require.Equal(t, 100, cfg.Summary.ChunkOverlap)
	require.Equal(t, "drop", cfg.Summary.FailurePolicy)
	require.Equal(t, "llama3.1", cfg.LLM.Model)
	require.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	require.Equal(t, 4, cfg.Summary.MaxConcurrency)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CORSOrigins)
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("LLM_BASE_URL=http://from-file/v1\nLLM_API_KEY=file-key\n"), 0o600))
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV_FILE", envPath)
	t.Setenv("LLM_API_KEY", "env-key")
	// registered so the value loaded from the file is removed after the test
	t.Setenv("LLM_BASE_URL", "")
	require.NoError(t, os.Unsetenv("LLM_BASE_URL"))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://from-file/v1", cfg.LLM.BaseURL)
	require.Equal(t, "env-key", cfg.LLM.APIKey)
}

func TestLoadRejectsMissingExplicitEnvFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "read env file")
}
