package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yndnr/tinykv/internal/infra/buildinfo"
	"github.com/yndnr/tinykv/internal/infra/confloader"
	"github.com/yndnr/tinykv/internal/infra/shutdown"
	"github.com/yndnr/tinykv/internal/server/config"
	"github.com/yndnr/tinykv/internal/server/httpserver"
	"github.com/yndnr/tinykv/internal/server/redisserver"
	"github.com/yndnr/tinykv/internal/storage/memory"
	"github.com/yndnr/tinykv/internal/telemetry/logger"
	"github.com/yndnr/tinykv/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		addr        = flag.String("addr", "", "Redis listen address (overrides config)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("tinykv-server %s\n", buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile, *addr)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting tinykv-server",
		"build", buildinfo.Get(),
		"config", *configFile)

	reg := metric.NewRegistry()
	store := memory.New(memory.WithObserver(reg))
	if err := reg.Register(metric.NewCollector(store)); err != nil {
		return fmt.Errorf("register store collector: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, shutdown.WithLogger(log.Slog()))

	redisSrv := redisserver.New(redisConfig(cfg), store, log.Slog().With("component", "redis"),
		redisserver.WithRecorder(reg))
	if err := redisSrv.Start(ctx); err != nil {
		return fmt.Errorf("start redis server: %w", err)
	}
	log.Info("redis server listening", "addr", redisSrv.Addr().String())

	// Hooks run in reverse order of registration.
	shutdownHandler.OnShutdown("redis server", redisSrv.Shutdown)

	if cfg.Server.Metrics.Enabled {
		httpSrv := httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: reg.Handler(),
			Store:   store,
			Logger:  log.Slog().With("component", "http"),
		}))
		if err := httpSrv.Start(func(err error) {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger("http server failed")
		}); err != nil {
			cancel()
			_ = redisSrv.Shutdown(context.Background())
			return fmt.Errorf("start http server: %w", err)
		}
		log.Info("HTTP server listening", "addr", httpSrv.Addr().String())

		shutdownHandler.OnShutdown("http server", httpSrv.Shutdown)
	}

	if *configFile != "" {
		watcher, err := watchConfig(*configFile, *addr, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err, "reason", shutdownHandler.Reason())
		return err
	}

	log.Info("server stopped gracefully", "reason", shutdownHandler.Reason())
	return nil
}

// loadConfig loads configuration from defaults, file, .env, environment and
// the -addr override, then verifies it.
func loadConfig(configFile, addr string) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithDotEnv(".env")}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if addr != "" {
		opts = append(opts, confloader.WithOverrides(map[string]any{"server.redis.addr": addr}))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger and installs it as the
// default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	return &redisserver.Config{
		Address:        cfg.Server.Redis.Addr,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		RateLimit:      cfg.Server.Redis.RateLimit,
		ReadBufferSize: cfg.Server.Redis.ReadBufferSize,
	}
}

// watchConfig reloads the config file on change and applies log.level.
// Other settings need a restart.
func watchConfig(configFile, addr string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile, addr)
		if err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		old := logger.GetLevel()
		logger.SetLevel(cfg.Log.Level)
		if level := logger.GetLevel(); level != old {
			log.Info("log level changed", "from", old, "to", level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
