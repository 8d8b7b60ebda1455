package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	JWTSecret              string
	TokenTTL               time.Duration
	SeedToken              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	NATSURL                string
	OpenAIAPIKey           string
	OpenAIBaseURL          string
	OpenAIModel            string
	GradingTimeout         time.Duration
	GradingWorkers         int
	GradingQueueSize       int
	GradingSweepInterval   time.Duration
	GradingSweepMinAge     time.Duration
	CORSAllowOrigins       string
	NarrationAccountID     string
	NarrationAPIToken      string
	NarrationMaxAttempts   int
	NarrationRetryDelay    time.Duration
	NarrationTimeout       time.Duration
	StatsCacheTTL          time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TULIS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "TULIS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("cloudinary.folder", "tulis/lectures")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("grading.timeout", "90s")
	v.SetDefault("grading.workers", 4)
	v.SetDefault("grading.queue_size", 128)
	v.SetDefault("grading.sweep_interval", "30s")
	v.SetDefault("grading.sweep_min_age", "1m")
	v.SetDefault("cors.allow_origins", "*")
	v.SetDefault("narration.max_attempts", 3)
	v.SetDefault("narration.retry_delay", "3s")
	v.SetDefault("narration.timeout", "30s")
	v.SetDefault("stats.cache_ttl", "5m")

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	gradingTimeout, err := time.ParseDuration(v.GetString("grading.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	sweepInterval, err := time.ParseDuration(v.GetString("grading.sweep_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading sweep interval: %w", err)
	}

	sweepMinAge, err := time.ParseDuration(v.GetString("grading.sweep_min_age"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading sweep min age: %w", err)
	}

	narrationDelay, err := time.ParseDuration(v.GetString("narration.retry_delay"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid narration retry delay: %w", err)
	}

	narrationTimeout, err := time.ParseDuration(v.GetString("narration.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid narration timeout: %w", err)
	}

	statsTTL, err := time.ParseDuration(v.GetString("stats.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		TokenTTL:               tokenTTL,
		SeedToken:              v.GetString("seed.token"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		NATSURL:                v.GetString("nats.url"),
		OpenAIAPIKey:           v.GetString("openai.api_key"),
		OpenAIBaseURL:          v.GetString("openai.base_url"),
		OpenAIModel:            v.GetString("openai.model"),
		GradingTimeout:         gradingTimeout,
		GradingWorkers:         v.GetInt("grading.workers"),
		GradingQueueSize:       v.GetInt("grading.queue_size"),
		GradingSweepInterval:   sweepInterval,
		GradingSweepMinAge:     sweepMinAge,
		CORSAllowOrigins:       v.GetString("cors.allow_origins"),
		NarrationAccountID:     v.GetString("narration.account_id"),
		NarrationAPIToken:      v.GetString("narration.api_token"),
		NarrationMaxAttempts:   v.GetInt("narration.max_attempts"),
		NarrationRetryDelay:    narrationDelay,
		NarrationTimeout:       narrationTimeout,
		StatsCacheTTL:          statsTTL,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.GradingWorkers <= 0 {
		cfg.GradingWorkers = 4
	}

	if cfg.GradingQueueSize <= 0 {
		cfg.GradingQueueSize = 128
	}

	if cfg.NarrationMaxAttempts <= 0 {
		cfg.NarrationMaxAttempts = 3
	}

	return cfg, nil
}
