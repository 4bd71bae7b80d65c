package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the grading service.
type Config struct {
	AppName    string
	AppEnv     string
	AppPort    string
	AppVersion string

	RedisURL    string
	SnapshotTTL time.Duration

	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIRubricModel string
	OpenAIMaxTokens   int

	MaxConcurrentGrading int
	PassThreshold        float64
	ResultsDir           string
	MaxUploadBytes       int64

	RateLimitMax    int
	RateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIAvailable reports whether the grading model can be reached at all.
func (c Config) AIAvailable() bool {
	return c.OpenAIAPIKey != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GRADEFLOW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GradeFlow API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.version", "0.0.0-dev")
	v.SetDefault("snapshot.ttl", "24h")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 2048)
	v.SetDefault("max_concurrent_grading", 10)
	v.SetDefault("pass_threshold", 60.0)
	v.SetDefault("results.dir", "results")
	v.SetDefault("max_upload_mb", 10)
	v.SetDefault("rate_limit.max", 30)
	v.SetDefault("rate_limit.window", "1m")

	ttl, err := time.ParseDuration(v.GetString("snapshot.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid snapshot ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("rate_limit.window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		AppVersion:           v.GetString("app.version"),
		RedisURL:             v.GetString("redis.url"),
		SnapshotTTL:          ttl,
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIModel:          v.GetString("openai.model"),
		OpenAIRubricModel:    v.GetString("openai.rubric_model"),
		OpenAIMaxTokens:      v.GetInt("openai.max_tokens"),
		MaxConcurrentGrading: v.GetInt("max_concurrent_grading"),
		PassThreshold:        v.GetFloat64("pass_threshold"),
		ResultsDir:           v.GetString("results.dir"),
		MaxUploadBytes:       v.GetInt64("max_upload_mb") * 1024 * 1024,
		RateLimitMax:         v.GetInt("rate_limit.max"),
		RateLimitWindow:      window,
	}

	if cfg.MaxConcurrentGrading <= 0 {
		cfg.MaxConcurrentGrading = 10
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 * 1024 * 1024
	}

	if cfg.OpenAIRubricModel == "" {
		cfg.OpenAIRubricModel = cfg.OpenAIModel
	}

	return cfg, nil
}
