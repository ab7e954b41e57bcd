package config

import "time"

const (
	DefaultRedisAddr       = "127.0.0.1:6379"
	DefaultReadBufferSize  = 4096
	DefaultMetricsAddr     = "127.0.0.1:9121"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
)

// Default is the configuration used before any file, environment variable
// or flag is applied. Idle timeout and rate limit start disabled and the
// HTTP endpoint is off.
func Default() *ServerConfig {
	var cfg ServerConfig
	cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	cfg.Server.Redis.Addr = DefaultRedisAddr
	cfg.Server.Redis.ReadBufferSize = DefaultReadBufferSize
	cfg.Server.Metrics.Addr = DefaultMetricsAddr
	cfg.Log.Level = DefaultLogLevel
	cfg.Log.Format = DefaultLogFormat
	return &cfg
}
