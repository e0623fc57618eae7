package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Summary SummaryConfig `yaml:"summary"`
	LLM     LLMConfig     `yaml:"llm"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORSOrigins  []string        `yaml:"corsOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool   `yaml:"enabled"`
	RequestsPerMinute int    `yaml:"requestsPerMinute"`
	Burst             int    `yaml:"burst"`
	Backend           string `yaml:"backend"`
	ValkeyAddr        string `yaml:"valkeyAddr"`
	KeyPrefix         string `yaml:"keyPrefix"`
}

// SummaryConfig defines how documents are split and summarized.
type SummaryConfig struct {
	DefaultWordCount int    `yaml:"defaultWordCount"`
	WordsPerPage     int    `yaml:"wordsPerPage"`
	ChunkSize        int    `yaml:"chunkSize"`
	ChunkOverlap     int    `yaml:"chunkOverlap"`
	MaxConcurrency   int    `yaml:"maxConcurrency"`
	FailurePolicy    string `yaml:"failurePolicy"`
	MaxUploadBytes   int64  `yaml:"maxUploadBytes"`
	TempDir          string `yaml:"tempDir"`
}

// LLMConfig contains settings for the OpenAI compatible model endpoint.
type LLMConfig struct {
	APIKey            string         `yaml:"apiKey"`
	BaseURL           string         `yaml:"baseUrl"`
	Model             string         `yaml:"model"`
	Temperature       float32        `yaml:"temperature"`
	MaxTokens         int            `yaml:"maxTokens"`
	SystemPrompt      string         `yaml:"systemPrompt"`
	Timeout           time.Duration  `yaml:"timeout"`
	RequestsPerSecond float64        `yaml:"requestsPerSecond"`
	Burst             int            `yaml:"burst"`
	Retry             LLMRetryConfig `yaml:"retry"`
	Breaker           BreakerConfig  `yaml:"breaker"`
}

// LLMRetryConfig configures backoff for transient model failures.
type LLMRetryConfig struct {
	MaxAttempts    int           `yaml:"maxAttempts"`
	InitialDelay   time.Duration `yaml:"initialDelay"`
	MaxDelay       time.Duration `yaml:"maxDelay"`
	JitterFraction float64       `yaml:"jitterFraction"`
}

// BreakerConfig configures the circuit breaker in front of the model endpoint.
type BreakerConfig struct {
	MaxRequests      uint32        `yaml:"maxRequests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold float64       `yaml:"failureThreshold"`
	MinRequests      uint32        `yaml:"minRequests"`
}

// Load reads configuration from a YAML file, an optional .env file and
// environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	if err := loadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// loadDotEnv populates unset variables from path (default ".env").
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("read env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("parse env file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	setDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	setDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORSOrigins = splitList(v)
	}
	setBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	setInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	setInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	if v := os.Getenv("HTTP_RATE_LIMIT_BACKEND"); v != "" {
		cfg.HTTP.RateLimit.Backend = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_VALKEY_ADDR"); v != "" {
		cfg.HTTP.RateLimit.ValkeyAddr = v
	}

	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_SYSTEM_PROMPT"); v != "" {
		cfg.LLM.SystemPrompt = v
	}
	setDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)
	if v := os.Getenv("LLM_REQUESTS_PER_SECOND"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.LLM.RequestsPerSecond = parsed
		}
	}
	setInt("LLM_RETRY_MAX_ATTEMPTS", &cfg.LLM.Retry.MaxAttempts)

	setInt("SUMMARY_DEFAULT_WORD_COUNT", &cfg.Summary.DefaultWordCount)
	setInt("SUMMARY_WORDS_PER_PAGE", &cfg.Summary.WordsPerPage)
	setInt("SUMMARY_CHUNK_SIZE", &cfg.Summary.ChunkSize)
	setInt("SUMMARY_CHUNK_OVERLAP", &cfg.Summary.ChunkOverlap)
	setInt("SUMMARY_MAX_CONCURRENCY", &cfg.Summary.MaxConcurrency)
	if v := os.Getenv("SUMMARY_FAILURE_POLICY"); v != "" {
		cfg.Summary.FailurePolicy = v
	}
	if v := os.Getenv("SUMMARY_MAX_UPLOAD_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Summary.MaxUploadBytes = parsed
		}
	}
	if v := os.Getenv("SUMMARY_TEMP_DIR"); v != "" {
		cfg.Summary.TempDir = v
	}
}

func setInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func setDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 30,
				Burst:             10,
				Backend:           "memory",
				KeyPrefix:         "summarizer:ratelimit",
			},
			CORSOrigins: []string{"*"},
		},
		Summary: SummaryConfig{
			DefaultWordCount: 150,
			WordsPerPage:     250,
			ChunkSize:        4000,
			ChunkOverlap:     200,
			MaxConcurrency:   0,
			FailurePolicy:    "abort",
			MaxUploadBytes:   32 << 20,
		},
		LLM: LLMConfig{
			BaseURL:     "http://localhost:11434/v1",
			Model:       "llama3",
			Temperature: 0.2,
			Timeout:     2 * time.Minute,
			Retry: LLMRetryConfig{
				MaxAttempts:    3,
				InitialDelay:   500 * time.Millisecond,
				MaxDelay:       10 * time.Second,
				JitterFraction: 0.2,
			},
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 0.6,
				MinRequests:      5,
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
		switch c.HTTP.RateLimit.Backend {
		case "", "memory":
		case "valkey":
			if strings.TrimSpace(c.HTTP.RateLimit.ValkeyAddr) == "" {
				return errors.New("http.rateLimit.valkeyAddr cannot be empty when backend is valkey")
			}
		default:
			return fmt.Errorf("http.rateLimit.backend %q is not supported", c.HTTP.RateLimit.Backend)
		}
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		return errors.New("llm.baseUrl cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.Timeout < 0 {
		return errors.New("llm.timeout cannot be negative")
	}
	if c.LLM.RequestsPerSecond < 0 {
		return errors.New("llm.requestsPerSecond cannot be negative")
	}
	if c.LLM.Retry.MaxAttempts <= 0 {
		return errors.New("llm.retry.maxAttempts must be positive")
	}
	if c.LLM.Breaker.FailureThreshold <= 0 || c.LLM.Breaker.FailureThreshold > 1 {
		return errors.New("llm.breaker.failureThreshold must be in (0, 1]")
	}
	if c.Summary.DefaultWordCount <= 0 {
		return errors.New("summary.defaultWordCount must be positive")
	}
	if c.Summary.WordsPerPage <= 0 {
		return errors.New("summary.wordsPerPage must be positive")
	}
	if c.Summary.ChunkSize <= 0 {
		return errors.New("summary.chunkSize must be positive")
	}
	if c.Summary.ChunkOverlap < 0 || c.Summary.ChunkOverlap >= c.Summary.ChunkSize {
		return errors.New("summary.chunkOverlap must be non-negative and smaller than chunkSize")
	}
	if c.Summary.MaxConcurrency < 0 {
		return errors.New("summary.maxConcurrency cannot be negative")
	}
	switch c.Summary.FailurePolicy {
	case "abort", "drop":
	default:
		return fmt.Errorf("summary.failurePolicy %q must be abort or drop", c.Summary.FailurePolicy)
	}
	if c.Summary.MaxUploadBytes <= 0 {
		return errors.New("summary.maxUploadBytes must be positive")
	}
	return nil
}
