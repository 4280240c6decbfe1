package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/gophdrop/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-e string   S3 endpoint
//	-r string   S3 region
//	-b string   bucket name
//	-p string   public base URL of the bucket
//	-m int      maximum upload size in bytes
//
// Credentials come from the environment or the JSON file only.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-e", "-r", "-b", "-p", "-m"})

	fs := flag.NewFlagSet("gophdrop-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "address and port to run the HTTP API")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port to run the health service")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3Region, "r", cfg.S3Region, "S3 region")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.PublicBaseURL, "p", cfg.PublicBaseURL, "public base URL of the bucket")
	fs.Int64Var(&cfg.MaxUploadSize, "m", cfg.MaxUploadSize, "maximum upload size in bytes")

	return fs.Parse(args)
}
