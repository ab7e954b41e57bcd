package config

import "time"

// ServerConfig is the root of the tinykv-server configuration file.
//
//	server:
//	  shutdown_timeout: 30s
//	  redis:
//	    addr: 127.0.0.1:6379
//	    idle_timeout: 5m
//	    rate_limit: 1000
//	    read_buffer_size: 4096
//	  metrics:
//	    enabled: true
//	    addr: 127.0.0.1:9121
//	log:
//	  level: info
//	  format: json
type ServerConfig struct {
	Server ServerSection `koanf:"server"`
	Log    LogSection    `koanf:"log"`
}

type ServerSection struct {
	// ShutdownTimeout bounds graceful shutdown of all listeners.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	Redis   RedisConfig   `koanf:"redis"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`
	// Connections silent for IdleTimeout are closed. Zero keeps them open.
	IdleTimeout time.Duration `koanf:"idle_timeout"`
	// RateLimit caps commands per second per client IP. Zero is unlimited.
	RateLimit      int `koanf:"rate_limit"`
	ReadBufferSize int `koanf:"read_buffer_size"`
}

// MetricsConfig configures the HTTP endpoint serving /health and /metrics.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
