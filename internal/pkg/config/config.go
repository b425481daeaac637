package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	BasePath         string        `env:"BASE_PATH" envDefault:"./data"`
	MaxBodySize      int64         `env:"MAX_BODY_SIZE_BYTES" envDefault:"1048576"` // 1MB
	APIKeys          []string      `env:"API_KEYS,required"`
	S3Bucket         string        `env:"S3_BUCKET,required"`
	S3Region         string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint       string        `env:"S3_ENDPOINT"`
	S3ForcePathStyle bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"false"`
	S3KeyPrefix      string        `env:"S3_KEY_PREFIX" envDefault:"logs"`
	CycleInterval    time.Duration `env:"CYCLE_INTERVAL" envDefault:"10m"`
	UploadMaxRetries int           `env:"UPLOAD_MAX_RETRIES" envDefault:"3"`
	UploadBackoff    time.Duration `env:"UPLOAD_RETRY_BACKOFF" envDefault:"5s"`
	IngestServerAddr string        `env:"INGEST_SERVER_ADDR" envDefault:":8080"`
	AdminServerAddr  string        `env:"ADMIN_SERVER_ADDR" envDefault:":9091"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
