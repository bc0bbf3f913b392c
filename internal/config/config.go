// Package config loads process configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"orgmatrix/internal/core"
	s3store "orgmatrix/internal/infra/persistence/s3"
)

// Config describes the orgmatrixd process configuration.
type Config struct {
	ListenAddr string `env:"ORGMATRIX_LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"ORGMATRIX_LOG_LEVEL"   envDefault:"info"`

	StorageDriver string `env:"ORGMATRIX_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"ORGMATRIX_SQLITE_PATH"    envDefault:"orgmatrix.db"`
	PostgresDSN   string `env:"ORGMATRIX_POSTGRES_DSN"`
	RedisAddr     string `env:"ORGMATRIX_REDIS_ADDR"`

	S3Bucket          string `env:"ORGMATRIX_S3_BUCKET"`
	S3Region          string `env:"ORGMATRIX_S3_REGION"`
	S3Endpoint        string `env:"ORGMATRIX_S3_ENDPOINT"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3SessionToken    string `env:"AWS_SESSION_TOKEN"`
	S3PathStyle       bool   `env:"ORGMATRIX_S3_PATH_STYLE" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Storage maps the flat environment fields onto the core storage selector.
func (c Config) Storage() core.StorageConfig {
	return core.StorageConfig{
		Driver:      core.StorageDriver(c.StorageDriver),
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		RedisAddr:   c.RedisAddr,
		S3: s3store.Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			Endpoint:        c.S3Endpoint,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			SessionToken:    c.S3SessionToken,
			PathStyle:       c.S3PathStyle,
		},
	}
}
