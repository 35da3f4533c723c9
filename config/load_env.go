package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/subosito/gotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"dev"`
	Port          string `env:"PORT" default:"8080"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	StripMarkdown bool   `env:"STRIP_MARKDOWN" default:"true"`

	// AnalyzeRateLimit is requests per second per client IP on POST
	// /api/analyze. Zero disables the limiter.
	AnalyzeRateLimit float64 `env:"ANALYZE_RATE_LIMIT" default:"5"`
	AnalyzeRateBurst int     `env:"ANALYZE_RATE_BURST" default:"10"`

	Kafka  KafkaConfig
	Valkey ValkeyConfig
	AWS    AWSConfig
}

type KafkaConfig struct {
	Enabled      bool   `env:"KAFKA_ENABLED" default:"false"`
	Broker       string `env:"KAFKA_BROKER" default:"localhost:29092"`
	GroupID      string `env:"KAFKA_CONSUMER_GROUP_ID" default:"sentiboard-consumer-group"`
	RequestTopic string `env:"KAFKA_REQUEST_TOPIC" default:"analysis-request"`
	ResultTopic  string `env:"KAFKA_RESULT_TOPIC" default:"analysis-results"`
}

type ValkeyConfig struct {
	Address   string        `env:"VALKEY_INIT_ADDRESS"`
	Password  string        `env:"VALKEY_PASSWORD"`
	UseTLS    bool          `env:"VALKEY_TLS" default:"false"`
	DedupeTTL time.Duration `env:"VALKEY_DEDUPE_TTL" default:"24h"`
}

type AWSConfig struct {
	Region        string `env:"AWS_REGION" default:"us-west-2"`
	Endpoint      string `env:"AWS_ENDPOINT"`
	HistoryTable  string `env:"DYNAMODB_TABLE" default:"SentimentHistory"`
	ExportEnabled bool   `env:"DYNAMODB_EXPORT_ENABLED" default:"false"`
}

// LoadEnv loads config/envs/.env.<env> into the process environment. A
// missing file is not an error; the OS environment is used as is.
func LoadEnv(env string) {
	envFile := "config/envs/.env." + env
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment",
			slog.String("file", envFile))
	}
}

// Load reads the env file for appEnv and then the typed configuration.
func Load(appEnv string) (*Config, error) {
	if appEnv == "" {
		appEnv = "dev"
	}
	LoadEnv(appEnv)

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Kafka.Enabled && cfg.Valkey.Address == "" {
		return fmt.Errorf("VALKEY_INIT_ADDRESS is required when KAFKA_ENABLED is set")
	}
	if cfg.AnalyzeRateLimit < 0 || (cfg.AnalyzeRateLimit > 0 && cfg.AnalyzeRateBurst < 1) {
		return fmt.Errorf("ANALYZE_RATE_LIMIT must be >= 0 and ANALYZE_RATE_BURST >= 1 when limiting")
	}
	if cfg.AWS.ExportEnabled && cfg.AWS.HistoryTable == "" {
		return fmt.Errorf("DYNAMODB_TABLE is required when DYNAMODB_EXPORT_ENABLED is set")
	}
	return nil
}
