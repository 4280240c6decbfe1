// Package config handles configuration for the upload gateway: built-in
// defaults, environment (optionally from a .env file), a JSON overlay and
// command-line flags, in that order.
package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the gophdrop gateway.
//
// Fields:
//   - HTTPAddr: bind address of the upload/delete HTTP API.
//   - GRPCAddr: bind address of the gRPC health service.
//   - S3Endpoint / S3Region / S3AccessKey / S3SecretKey / S3PathStyle: object store access.
//   - Bucket: bucket all objects are written to.
//   - PublicBaseURL: base of public object URLs; empty means the bucket is private.
//   - MaxUploadSize: largest accepted request body, in bytes.
//   - MetricsEnabled: expose /metrics.
type Config struct {
	HTTPAddr string `validate:"required,hostname_port"`
	GRPCAddr string `validate:"required,hostname_port"`

	S3Endpoint  string `validate:"omitempty,url"`
	S3Region    string `validate:"required"`
	S3AccessKey string
	S3SecretKey string `validate:"required_with=S3AccessKey"`
	S3PathStyle bool

	Bucket        string `validate:"required"`
	PublicBaseURL string `validate:"omitempty,url"`
	MaxUploadSize int64  `validate:"gt=0"`

	MetricsEnabled  bool
	ShutdownTimeout time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates Config with development defaults (a local MinIO).
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCAddr = ":50051"
	c.S3Endpoint = "http://127.0.0.1:9000"
	c.S3Region = "us-east-1"
	c.S3PathStyle = true
	c.Bucket = common.DefaultBucket
	c.MaxUploadSize = 50 << 20
	c.MetricsEnabled = true
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then the environment,
// then an optional JSON file and finally command-line flags. args excludes
// the program name; lookup is usually os.LookupEnv.
func LoadConfig(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args, lookup); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
