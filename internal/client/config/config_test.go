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

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "uploads", c.Bucket)
	assert.Equal(t, 100, c.ListLimit)
	assert.EqualValues(t, 2<<20, c.MaxFileSize)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name: "endpoints and interval",
			args: []string{"-u", "http://gw/api/upload", "-d", "http://gw/api/delete-file", "-a", "gw:50051", "-i", "10"},
			mutate: func(c *Config) {
				c.UploadEndpoint = "http://gw/api/upload"
				c.DeleteEndpoint = "http://gw/api/delete-file"
				c.HealthAddr = "gw:50051"
				c.OnlineCheckInterval = 10 * time.Second
			},
		},
		{
			name: "bucket listing and size",
			args: []string{"-b", "media", "-p", "http://cdn", "-s", "http://minio:9000", "-l", "20", "-m", "1024", "-unknown", "x"},
			mutate: func(c *Config) {
				c.Bucket = "media"
				c.PublicBaseURL = "http://cdn"
				c.S3Endpoint = "http://minio:9000"
				c.ListLimit = 20
				c.MaxFileSize = 1024
			},
		},
		{name: "bad interval", args: []string{"-i", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := defaults()
			err := parseFlags(got, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.mutate(want)
			assert.Empty(t, cmp.Diff(want, got))
		})
	}
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"upload_endpoint":       "http://json/api/upload",
		"online_check_interval": "7s",
		"bucket":                "json-bucket",
		"s3_access_key":         "ak",
		"s3_secret_key":         "sk",
		"s3_path_style":         false,
		"max_file_size":         0,
		"delete_timeout":        int64(2 * time.Second),
	})

	got := defaults()
	require.NoError(t, parseJson(got, []string{"-config", path}))

	want := defaults()
	want.UploadEndpoint = "http://json/api/upload"
	want.OnlineCheckInterval = 7 * time.Second
	want.Bucket = "json-bucket"
	want.S3AccessKey = "ak"
	want.S3SecretKey = "sk"
	want.S3PathStyle = false
	want.MaxFileSize = 0
	want.DeleteTimeout = 2 * time.Second
	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseJson_NoFlagNoChange(t *testing.T) {
	got := defaults()
	require.NoError(t, parseJson(got, []string{"-b", "x"}))
	assert.Empty(t, cmp.Diff(defaults(), got))
}

func TestParseJson_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))

	require.ErrorContains(t, parseJson(defaults(), []string{"-c", bad}), "parse config")
	require.ErrorContains(t, parseJson(defaults(), []string{"-c", filepath.Join(t.TempDir(), "missing.json")}), "read config")
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"bucket": "from-json", "list_limit": 50})

	cfg, err := LoadConfig([]string{"-c", path, "-b", "from-flag"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Bucket)
	assert.Equal(t, 50, cfg.ListLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad upload url", mutate: func(c *Config) { c.UploadEndpoint = "not a url" }},
		{name: "empty bucket", mutate: func(c *Config) { c.Bucket = "" }},
		{name: "zero interval", mutate: func(c *Config) { c.OnlineCheckInterval = 0 }},
		{name: "limit too large", mutate: func(c *Config) { c.ListLimit = 5000 }},
		{name: "access key without secret", mutate: func(c *Config) { c.S3AccessKey = "ak" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "bad health addr", mutate: func(c *Config) { c.HealthAddr = "nohostport" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			require.ErrorContains(t, c.Validate(), "invalid configuration")
		})
	}

	_, err := LoadConfig([]string{"-l", "0"})
	require.Error(t, err)
}

func TestDBPath(t *testing.T) {
	c := defaults()
	assert.Equal(t, filepath.Join("/tmp/data", "gophdrop.db"), c.DBPath("/tmp/data"))
}
