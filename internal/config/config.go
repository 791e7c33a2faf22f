package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "REPORTS"

type Config struct {
	Address           string
	DatabasePath      string
	CRMPath           string
	CRMAutoMigrate    bool
	RatesCacheTTL     time.Duration
	RatesPath         string
	LogLevel          slog.Level
	SeedReferralsPath string
}

// Load reads .env and config.yaml from the working directory.
func Load() (Config, error) {
	return LoadFrom(".")
}

// LoadFrom resolves settings in order: defaults, dir/config.yaml, environment
// (REPORTS_ prefix, dots become underscores). dir/.env only fills variables
// that are not already set.
func LoadFrom(dir string) (Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.path", "data/reports.db")
	v.SetDefault("crm.path", "")
	v.SetDefault("crm.auto_migrate", false)
	v.SetDefault("rates.cache_ttl", "1m")
	v.SetDefault("rates.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("seed.referrals_path", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Address:           v.GetString("server.address"),
		DatabasePath:      v.GetString("database.path"),
		CRMPath:           v.GetString("crm.path"),
		CRMAutoMigrate:    v.GetBool("crm.auto_migrate"),
		RatesCacheTTL:     v.GetDuration("rates.cache_ttl"),
		RatesPath:         v.GetString("rates.path"),
		SeedReferralsPath: v.GetString("seed.referrals_path"),
	}
	if cfg.CRMPath == "" {
		cfg.CRMPath = cfg.DatabasePath
	}
	if cfg.RatesCacheTTL < 0 {
		return Config{}, fmt.Errorf("rates.cache_ttl must not be negative, got %s", cfg.RatesCacheTTL)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	return cfg, nil
}
