package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognised by parseEnv.
const (
	EnvHTTPAddr           = "NOTEHUB_HTTP_ADDR"
	EnvGRPCAddr           = "NOTEHUB_GRPC_ADDR"
	EnvDatabaseDSN        = "NOTEHUB_DATABASE_DSN"
	EnvSecretKey          = "NOTEHUB_SECRET_KEY"
	EnvS3RootUser         = "NOTEHUB_S3_ROOT_USER"
	EnvS3RootPassword     = "NOTEHUB_S3_ROOT_PASSWORD"
	EnvS3Bucket           = "NOTEHUB_S3_BUCKET"
	EnvS3Region           = "NOTEHUB_S3_REGION"
	EnvS3BaseEndpoint     = "NOTEHUB_S3_BASE_ENDPOINT"
	EnvS3PublicURL        = "NOTEHUB_S3_PUBLIC_URL"
	EnvRemoteFetchTimeout = "NOTEHUB_REMOTE_FETCH_TIMEOUT"
	EnvShutdownTimeout    = "NOTEHUB_SHUTDOWN_TIMEOUT"
	EnvHealthInterval     = "NOTEHUB_HEALTH_INTERVAL"
	EnvLogLevel           = "NOTEHUB_LOG_LEVEL"
)

// loadDotEnv loads ./.env if present. Variables already set in the
// process environment win over the file.
func loadDotEnv() {
	_ = godotenv.Load()
}

// parseEnv overlays values found through lookup (normally os.LookupEnv).
// Durations use Go syntax ("15s"); unparsable durations are ignored.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	str(EnvHTTPAddr, &config.EndpointAddrHTTP)
	str(EnvGRPCAddr, &config.EndpointAddrGRPC)
	str(EnvDatabaseDSN, &config.DatabaseDSN)
	str(EnvSecretKey, &config.SecretKey)
	str(EnvS3RootUser, &config.S3RootUser)
	str(EnvS3RootPassword, &config.S3RootPassword)
	str(EnvS3Bucket, &config.S3Bucket)
	str(EnvS3Region, &config.S3Region)
	str(EnvS3BaseEndpoint, &config.S3BaseEndpoint)
	str(EnvS3PublicURL, &config.S3PublicURL)
	dur(EnvRemoteFetchTimeout, &config.RemoteFetchTimeout)
	dur(EnvShutdownTimeout, &config.ShutdownTimeout)
	dur(EnvHealthInterval, &config.HealthInterval)
	str(EnvLogLevel, &config.LogLevel)
}
