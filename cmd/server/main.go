package main

import (
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/fiu-sentinel/console/internal/config"
	"github.com/fiu-sentinel/console/internal/server"
)

// Version information
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	var configPath string
	var showVersion bool

	flag.StringVar(&configPath, "config", "config/config.yaml", "Path to configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	// Initialize logger
	logger := initLogger()
	defer logger.Sync()

	// Show version if requested
	if showVersion {
		logger.Info("Sentinel Management Console",
			zap.String("version", Version),
			zap.String("git_commit", GitCommit),
			zap.String("build_time", BuildTime))
		return
	}

	logger.Info("Starting Sentinel Management Console",
		zap.String("config_path", configPath),
		zap.String("version", Version))

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.Logging.Level),
		zap.Bool("demo_mode", cfg.Demo.Enabled),
		zap.Bool("upstream_required", cfg.Upstream.Required))

	// Create and start server
	srv, err := server.New(cfg, logger, Version)
	if err != nil {
		logger.Fatal("Failed to create server", zap.Error(err))
	}

	logger.Info("Starting console server",
		zap.Int("http_port", cfg.Server.HTTP.Port))

	if err := srv.Start(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// initLogger initializes the application logger
func initLogger() *zap.Logger {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	var logger *zap.Logger
	var err error

	if env == "production" {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		logger, err = config.Build()
	} else {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		logger, err = config.Build()
	}

	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	return logger
}
