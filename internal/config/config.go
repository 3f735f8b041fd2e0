package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config carries the application settings shared by the CLI and GUI.
type Config struct {
	VaultDir string `env:"SPM_VAULT_DIR"`
	DBFile   string `env:"SPM_DB_FILE"`
	LogLevel string `env:"SPM_LOG_LEVEL"`
}

// NewConfig loads settings from .env (when present) and the environment,
// then applies defaults. Flags are registered separately via BindFlags so
// tests can construct a Config without touching the global flag set.
func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.VaultDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.VaultDir = filepath.Join(dir, "SecurePM")
		} else {
			c.VaultDir = "vault"
		}
	}
	if c.DBFile == "" {
		c.DBFile = "vault.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// BindFlags registers overrides on fs. Environment values become the flag
// defaults, so flags win only when explicitly set.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.VaultDir, "dir", c.VaultDir, "vault directory")
	fs.StringVar(&c.DBFile, "db", c.DBFile, "vault database filename")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug|info|warn|error)")
}

// DBPath resolves the full database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.VaultDir, c.DBFile)
}

// BuildLogger constructs a zap logger honoring the configured level. Vault
// code never logs secret material at any level.
func (c *Config) BuildLogger() (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.Set(c.LogLevel); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
