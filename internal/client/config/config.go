package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the gophdrop CLI.
//
// Units: OnlineCheckInterval and DeleteTimeout are time.Duration values,
// MaxFileSize is in bytes (0 disables the limit).
type Config struct {
	UploadEndpoint      string        `validate:"required,url"`
	DeleteEndpoint      string        `validate:"required,url"`
	HealthAddr          string        `validate:"omitempty,hostname_port"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`

	Bucket        string `validate:"required"`
	PublicBaseURL string `validate:"omitempty,url"`
	ListLimit     int    `validate:"min=1,max=1000"`

	S3Endpoint  string `validate:"omitempty,url"`
	S3Region    string `validate:"required"`
	S3AccessKey string
	S3SecretKey string `validate:"required_with=S3AccessKey"`
	S3PathStyle bool

	DataDir       string `validate:"required"`
	DBFile        string `validate:"required"`
	MaxFileSize   int64  `validate:"gte=0"`
	DeleteTimeout time.Duration
	LogLevel      string `validate:"oneof=debug info warn error"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.UploadEndpoint = "http://127.0.0.1:8080/api/upload"
	c.DeleteEndpoint = "http://127.0.0.1:8080/api/delete-file"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second

	c.Bucket = common.DefaultBucket
	c.ListLimit = 100

	c.S3Region = "us-east-1"
	c.S3PathStyle = true

	c.DataDir = "data"
	c.DBFile = "gophdrop.db"
	c.MaxFileSize = 2 << 20
	c.DeleteTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DBPath is where the local database lives, relative to dataDir.
func (c *Config) DBPath(dataDir string) string {
	return filepath.Join(dataDir, c.DBFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
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
