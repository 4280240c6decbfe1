package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophdrop/internal/flagx"
	"github.com/dmitrijs2005/gophdrop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "3s" or integer nanoseconds.
type JsonConfig struct {
	UploadEndpoint      string         `json:"upload_endpoint"`
	DeleteEndpoint      string         `json:"delete_endpoint"`
	HealthAddr          string         `json:"health_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	Bucket              string         `json:"bucket"`
	PublicBaseURL       string         `json:"public_base_url"`
	ListLimit           int            `json:"list_limit"`
	S3Endpoint          string         `json:"s3_endpoint"`
	S3Region            string         `json:"s3_region"`
	S3AccessKey         string         `json:"s3_access_key"`
	S3SecretKey         string         `json:"s3_secret_key"`
	S3PathStyle         *bool          `json:"s3_path_style"`
	DataDir             string         `json:"data_dir"`
	DBFile              string         `json:"db_file"`
	MaxFileSize         *int64         `json:"max_file_size"`
	DeleteTimeout       timex.Duration `json:"delete_timeout"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with the non-empty values of the JSON file given
// by -c or -config. Without such a flag it does nothing.
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

	setString(&cfg.UploadEndpoint, jc.UploadEndpoint)
	setString(&cfg.DeleteEndpoint, jc.DeleteEndpoint)
	setString(&cfg.HealthAddr, jc.HealthAddr)
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	setString(&cfg.Bucket, jc.Bucket)
	setString(&cfg.PublicBaseURL, jc.PublicBaseURL)
	if jc.ListLimit > 0 {
		cfg.ListLimit = jc.ListLimit
	}
	setString(&cfg.S3Endpoint, jc.S3Endpoint)
	setString(&cfg.S3Region, jc.S3Region)
	setString(&cfg.S3AccessKey, jc.S3AccessKey)
	setString(&cfg.S3SecretKey, jc.S3SecretKey)
	if jc.S3PathStyle != nil {
		cfg.S3PathStyle = *jc.S3PathStyle
	}
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.DBFile, jc.DBFile)
	if jc.MaxFileSize != nil {
		cfg.MaxFileSize = *jc.MaxFileSize
	}
	if jc.DeleteTimeout.Duration > 0 {
		cfg.DeleteTimeout = jc.DeleteTimeout.Duration
	}
	setString(&cfg.LogLevel, jc.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
