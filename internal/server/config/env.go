package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvHTTPAddr        = "GOPHDROP_HTTP_ADDR"
	EnvGRPCAddr        = "GOPHDROP_GRPC_ADDR"
	EnvS3Endpoint      = "S3_ENDPOINT"
	EnvS3Region        = "S3_REGION"
	EnvS3AccessKey     = "S3_ACCESS_KEY"
	EnvS3SecretKey     = "S3_SECRET_KEY"
	EnvS3PathStyle     = "S3_PATH_STYLE"
	EnvBucket          = "GOPHDROP_BUCKET"
	EnvPublicBaseURL   = "GOPHDROP_PUBLIC_BASE_URL"
	EnvMaxUploadSize   = "GOPHDROP_MAX_UPLOAD_SIZE"
	EnvMetricsEnabled  = "GOPHDROP_METRICS_ENABLED"
	EnvShutdownTimeout = "GOPHDROP_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "GOPHDROP_LOG_LEVEL"
)

// parseEnv overlays Config with environment variables. When -env names a
// dotenv file its values are used for variables the process environment
// does not set.
func parseEnv(cfg *Config, args []string, lookup func(string) (string, bool)) error {
	var fileVars map[string]string
	if path := flagx.EnvFile(args); path != "" {
		vars, err := godotenv.Read(path)
		if err != nil {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
		fileVars = vars
	}

	get := func(name string) (string, bool) {
		if lookup != nil {
			if v, ok := lookup(name); ok && v != "" {
				return v, true
			}
		}
		v, ok := fileVars[name]
		return v, ok && v != ""
	}

	setEnvString(get, EnvHTTPAddr, &cfg.HTTPAddr)
	setEnvString(get, EnvGRPCAddr, &cfg.GRPCAddr)
	setEnvString(get, EnvS3Endpoint, &cfg.S3Endpoint)
	setEnvString(get, EnvS3Region, &cfg.S3Region)
	setEnvString(get, EnvS3AccessKey, &cfg.S3AccessKey)
	setEnvString(get, EnvS3SecretKey, &cfg.S3SecretKey)
	setEnvString(get, EnvBucket, &cfg.Bucket)
	setEnvString(get, EnvPublicBaseURL, &cfg.PublicBaseURL)
	setEnvString(get, EnvLogLevel, &cfg.LogLevel)

	if v, ok := get(EnvS3PathStyle); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvS3PathStyle, err)
		}
		cfg.S3PathStyle = b
	}
	if v, ok := get(EnvMetricsEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMetricsEnabled, err)
		}
		cfg.MetricsEnabled = b
	}
	if v, ok := get(EnvMaxUploadSize); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxUploadSize, err)
		}
		cfg.MaxUploadSize = n
	}
	if v, ok := get(EnvShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}

	return nil
}

func setEnvString(get func(string) (string, bool), name string, dst *string) {
	if v, ok := get(name); ok {
		*dst = v
	}
}
