package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   upload endpoint URL
//	-d string   delete endpoint URL
//	-a string   address:port of the gRPC health endpoint
//	-i int      online check interval in seconds
//	-b string   bucket name
//	-p string   public base URL of the bucket
//	-s string   S3 endpoint used for listing
//	-l int      listing limit
//	-m int      maximum file size in bytes
//
// Other arguments are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-d", "-a", "-i", "-b", "-p", "-s", "-l", "-m"})

	fs := flag.NewFlagSet("gophdrop", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.UploadEndpoint, "u", cfg.UploadEndpoint, "upload endpoint URL")
	fs.StringVar(&cfg.DeleteEndpoint, "d", cfg.DeleteEndpoint, "delete endpoint URL")
	fs.StringVar(&cfg.HealthAddr, "a", cfg.HealthAddr, "address and port of the health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket name")
	fs.StringVar(&cfg.PublicBaseURL, "p", cfg.PublicBaseURL, "public base URL of the bucket")
	fs.StringVar(&cfg.S3Endpoint, "s", cfg.S3Endpoint, "S3 endpoint for listing")
	fs.IntVar(&cfg.ListLimit, "l", cfg.ListLimit, "maximum number of listed files")
	fs.Int64Var(&cfg.MaxFileSize, "m", cfg.MaxFileSize, "maximum file size in bytes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
