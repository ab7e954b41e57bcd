package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/tinykv/internal/telemetry/logger"
)

const maxReadBufferSize = 1 << 20

// Verify reports every invalid setting in cfg, joined into one error.
func Verify(cfg *ServerConfig) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	s := &cfg.Server
	check(s.ShutdownTimeout > 0, "server.shutdown_timeout must be positive")
	errs = appendAddrErr(errs, "server.redis.addr", s.Redis.Addr)
	check(s.Redis.IdleTimeout >= 0, "server.redis.idle_timeout must not be negative")
	check(s.Redis.RateLimit >= 0, "server.redis.rate_limit must not be negative")
	check(s.Redis.ReadBufferSize >= 1 && s.Redis.ReadBufferSize <= maxReadBufferSize,
		"server.redis.read_buffer_size must be between 1 and %d", maxReadBufferSize)

	if s.Metrics.Enabled {
		errs = appendAddrErr(errs, "server.metrics.addr", s.Metrics.Addr)
		check(s.Metrics.Addr != s.Redis.Addr, "server.metrics.addr conflicts with server.redis.addr")
	}

	check(logger.ValidLevel(cfg.Log.Level), "log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	check(logger.ValidFormat(cfg.Log.Format), "log.format %q is not one of json, text", cfg.Log.Format)

	return errors.Join(errs...)
}

func appendAddrErr(errs []error, name, addr string) []error {
	if addr == "" {
		return append(errs, fmt.Errorf("%s is required", name))
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return append(errs, fmt.Errorf("%s: %w", name, err))
	}
	return errs
}
