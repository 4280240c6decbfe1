package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdrop/internal/flagx"
	"github.com/dmitrijs2005/gophdrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "10s" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	S3Endpoint      string         `json:"s3_endpoint"`
	S3Region        string         `json:"s3_region"`
	S3AccessKey     string         `json:"s3_access_key"`
	S3SecretKey     string         `json:"s3_secret_key"`
	S3PathStyle     *bool          `json:"s3_path_style"`
	Bucket          string         `json:"bucket"`
	PublicBaseURL   string         `json:"public_base_url"`
	MaxUploadSize   int64          `json:"max_upload_size"`
	MetricsEnabled  *bool          `json:"metrics_enabled"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`
	LogLevel        string         `json:"log_level"`
}

// parseJson overlays Config with the non-empty values of the JSON file given
// by -c or -config.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.HTTPAddr, jc.HTTPAddr)
	setString(&cfg.GRPCAddr, jc.GRPCAddr)
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	if jc.S3PathStyle != nil {
		cfg.S3PathStyle = *jc.S3PathStyle
	}
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.PublicBaseURL, jc.PublicBaseURL)
	if jc.MaxUploadSize > 0 {
		cfg.MaxUploadSize = jc.MaxUploadSize
	}
	if jc.MetricsEnabled != nil {
		cfg.MetricsEnabled = *jc.MetricsEnabled
	}
	if jc.ShutdownTimeout.Duration > 0 {
		cfg.ShutdownTimeout = jc.ShutdownTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
