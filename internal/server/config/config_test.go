package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Equal(t, "uploads", c.Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.True(t, c.S3PathStyle)
	assert.True(t, c.MetricsEnabled)
	assert.Empty(t, c.PublicBaseURL)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoSourcesGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil, env(nil))
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseEnv(t *testing.T) {
	got := defaults()
	err := parseEnv(got, nil, env(map[string]string{
		EnvHTTPAddr:        "127.0.0.1:9090",
		EnvBucket:          "media",
		EnvPublicBaseURL:   "https://cdn.example.com",
		EnvS3AccessKey:     "key",
		EnvS3SecretKey:     "secret",
		EnvS3PathStyle:     "false",
		EnvMetricsEnabled:  "0",
		EnvMaxUploadSize:   "1024",
		EnvShutdownTimeout: "3s",
		EnvLogLevel:        "",
	}))
	require.NoError(t, err)

	want := defaults()
	want.HTTPAddr = "127.0.0.1:9090"
	want.Bucket = "media"
	want.PublicBaseURL = "https://cdn.example.com"
	want.S3AccessKey = "key"
	want.S3SecretKey = "secret"
	want.S3PathStyle = false
	want.MetricsEnabled = false
	want.MaxUploadSize = 1024
	want.ShutdownTimeout = 3 * time.Second
	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseEnv_DotenvFileFillsUnsetVariables(t *testing.T) {
	path := writeFile(t, ".env", "GOPHDROP_BUCKET=fromfile\nS3_REGION=eu-west-1\n")

	got := defaults()
	err := parseEnv(got, []string{"-env", path}, env(map[string]string{EnvBucket: "fromenv"}))
	require.NoError(t, err)

	assert.Equal(t, "fromenv", got.Bucket)
	assert.Equal(t, "eu-west-1", got.S3Region)
}

func TestParseEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		vars map[string]string
	}{
		{name: "bad bool", vars: map[string]string{EnvS3PathStyle: "maybe"}},
		{name: "bad size", vars: map[string]string{EnvMaxUploadSize: "big"}},
		{name: "bad duration", vars: map[string]string{EnvShutdownTimeout: "soon"}},
		{name: "missing env file", args: []string{"-env", "/nonexistent/.env"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, parseEnv(defaults(), tt.args, env(tt.vars)))
		})
	}
}

func TestParseJson(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"grpc_addr":        ":6000",
		"bucket":           "json-bucket",
		"max_upload_size":  2048,
		"metrics_enabled":  false,
		"shutdown_timeout": "1m",
	})
	require.NoError(t, err)
	path := writeFile(t, "cfg.json", string(b))

	got := defaults()
	require.NoError(t, parseJson(got, []string{"-c", path}))

	want := defaults()
	want.GRPCAddr = ":6000"
	want.Bucket = "json-bucket"
	want.MaxUploadSize = 2048
	want.MetricsEnabled = false
	want.ShutdownTimeout = time.Minute
	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseJson_Errors(t *testing.T) {
	require.Error(t, parseJson(defaults(), []string{"-config", "/nonexistent.json"}))

	path := writeFile(t, "bad.json", "{")
	require.Error(t, parseJson(defaults(), []string{"-c", path}))
}

func TestParseFlags(t *testing.T) {
	got := defaults()
	err := parseFlags(got, []string{"-a", ":9000", "-g", ":9001", "-e", "http://minio:9000", "-r", "eu-central-1", "-b", "b", "-p", "http://cdn", "-m", "10", "-x", "ignored"})
	require.NoError(t, err)

	want := defaults()
	want.HTTPAddr = ":9000"
	want.GRPCAddr = ":9001"
	want.S3Endpoint = "http://minio:9000"
	want.S3Region = "eu-central-1"
	want.Bucket = "b"
	want.PublicBaseURL = "http://cdn"
	want.MaxUploadSize = 10
	assert.Empty(t, cmp.Diff(want, got))

	require.Error(t, parseFlags(defaults(), []string{"-m", "lots"}))
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"bucket":"json"}`)

	cfg, err := LoadConfig([]string{"-c", path}, env(map[string]string{EnvBucket: "env", EnvHTTPAddr: ":7000"}))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Bucket)
	assert.Equal(t, ":7000", cfg.HTTPAddr)

	cfg, err = LoadConfig([]string{"-c", path, "-b", "flag"}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, "flag", cfg.Bucket)
}

func TestLoadConfig_InvalidIsRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		vars map[string]string
	}{
		{name: "empty bucket", vars: map[string]string{}, args: []string{"-b", ""}},
		{name: "bad public url", args: []string{"-p", "not a url"}},
		{name: "zero upload size", args: []string{"-m", "0"}},
		{name: "secret missing", vars: map[string]string{EnvS3AccessKey: "key"}},
		{name: "bad log level", vars: map[string]string{EnvLogLevel: "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args, env(tt.vars))
			require.Error(t, err)
		})
	}
}
