// Package config loads runtime configuration for the gophdrop CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config. Only non-empty values
//     override defaults.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// The result is checked with (*Config).Validate.
//
// # JSON schema
//
//	{
//	  "upload_endpoint": "http://127.0.0.1:8080/api/upload",
//	  "delete_endpoint": "http://127.0.0.1:8080/api/delete-file",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "bucket": "uploads",
//	  "public_base_url": "http://127.0.0.1:9000",
//	  "list_limit": 100,
//	  "s3_endpoint": "http://127.0.0.1:9000",
//	  "s3_region": "us-east-1",
//	  "s3_access_key": "minioadmin",
//	  "s3_secret_key": "minioadmin",
//	  "s3_path_style": true,
//	  "data_dir": "data",
//	  "db_file": "gophdrop.db",
//	  "max_file_size": 2097152,
//	  "delete_timeout": "10s",
//	  "log_level": "info"
//	}
package config
