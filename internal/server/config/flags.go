package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/notehub/internal/flagx"
)

var serverFlags = []string{"-a", "-l", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-w", "-t", "-k", "-i", "-v"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-l string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-w string   public base URL for stored files
//	-t int      remote fetch timeout, seconds
//	-k int      shutdown timeout, seconds
//	-i int      health probe interval, seconds
//	-v string   log level (debug, info, warn, error)
//
// args is filtered with flagx.FilterArgs first so that -c/-config and
// unrelated flags do not make parsing fail.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve HTTP")
	fs.StringVar(&config.EndpointAddrGRPC, "l", config.EndpointAddrGRPC, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicURL, "w", config.S3PublicURL, "public base URL for stored files")
	fetchTimeout := fs.Int("t", int(config.RemoteFetchTimeout.Seconds()), "remote fetch timeout (in seconds)")
	shutdownTimeout := fs.Int("k", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")
	healthInterval := fs.Int("i", int(config.HealthInterval.Seconds()), "health probe interval (in seconds)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	config.RemoteFetchTimeout = time.Duration(*fetchTimeout) * time.Second
	config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
	config.HealthInterval = time.Duration(*healthInterval) * time.Second
	return nil
}
