package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/notehub/internal/flagx"
	"github.com/dmitrijs2005/notehub/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// both "15s" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC   string         `json:"endpoint_addr_grpc"`
	DatabaseDSN        string         `json:"database_dsn"`
	SecretKey          string         `json:"secret_key"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	S3PublicURL        string         `json:"s3_public_url"`
	RemoteFetchTimeout timex.Duration `json:"remote_fetch_timeout"`
	ShutdownTimeout    timex.Duration `json:"shutdown_timeout"`
	HealthInterval     timex.Duration `json:"health_interval"`
	LogLevel           string         `json:"log_level"`
}

// parseJson overlays values from the JSON file named by -c/-config in args.
// Only fields present (non-zero) in the file override config. With no
// config flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicURL, c.S3PublicURL)
	overlay(&config.LogLevel, c.LogLevel)
	if c.RemoteFetchTimeout.Duration > 0 {
		config.RemoteFetchTimeout = c.RemoteFetchTimeout.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.HealthInterval.Duration > 0 {
		config.HealthInterval = c.HealthInterval.Duration
	}
	return nil
}
