package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the optional TOML configuration file.
type Config struct {
	DBPath   string `toml:"db_path"`   // catalog location; default is per-user
	LogLevel string `toml:"log_level"` // debug|info|warn|error
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// loadEnvironment reads the .env file when present; a missing default file
// is not an error.
func loadEnvironment(path string, logger *logrus.Logger) {
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("load env file %s: %v", path, err)
		}
		return
	}
	logger.Debugf("loaded environment from %s", path)
}

func setupLogging(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	return logger
}
