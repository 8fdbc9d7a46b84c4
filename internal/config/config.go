package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the kisquant binaries.
type Config struct {
	KIS      KIS            `yaml:"kis"`
	Storage  Storage        `yaml:"storage"`
	Logging  Logging        `yaml:"logging"`
	Backtest BacktestConfig `yaml:"backtest"`
	Gather   GatherConfig   `yaml:"gather"`
}

// KIS holds credentials and endpoint for the KIS open API.
type KIS struct {
	AppKey    string `yaml:"app_key"`
	AppSecret string `yaml:"app_secret"`
	Domain    string `yaml:"domain"`
	AccountNo string `yaml:"account_no"`
	AccountCd string `yaml:"account_cd"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir     string `yaml:"data_dir"`
	SymbolsFile string `yaml:"symbols_file"`
	SQLitePath  string `yaml:"sqlite_path"`
	ParquetDir  string `yaml:"parquet_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// BacktestConfig holds the simulation window and strategy parameters.
type BacktestConfig struct {
	StartDate   int   `yaml:"start_date"` // YYYYMMDD, inclusive
	EndDate     int   `yaml:"end_date"`   // YYYYMMDD, inclusive
	InitialCash int64 `yaml:"initial_cash"`
	Skip        int   `yaml:"skip"`
	Horizon     int   `yaml:"horizon"`
}

// GatherConfig holds parameters for the daily price gather job.
type GatherConfig struct {
	StartDate       int    `yaml:"start_date"` // YYYYMMDD, inclusive
	EndDate         int    `yaml:"end_date"`   // YYYYMMDD, inclusive
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	Cron            string `yaml:"cron"` // empty runs the job once and exits
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// Validate checks that the fields every binary needs are present.
func (c *Config) Validate() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	if c.Storage.SymbolsFile == "" {
		return fmt.Errorf("storage.symbols_file is required")
	}
	return nil
}

// ValidateKIS additionally checks the API credentials, required only by the
// binaries that talk to the broker.
func (c *Config) ValidateKIS() error {
	if c.KIS.AppKey == "" || c.KIS.AppSecret == "" {
		return fmt.Errorf("kis.app_key and kis.app_secret are required")
	}
	if c.KIS.Domain == "" {
		return fmt.Errorf("kis.domain is required")
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set. Credentials are the
// main use: they stay out of the YAML file on shared machines.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KIS_APP_KEY"); v != "" {
		cfg.KIS.AppKey = v
	}
	if v := os.Getenv("KIS_APP_SECRET"); v != "" {
		cfg.KIS.AppSecret = v
	}
	if v := os.Getenv("KIS_DOMAIN"); v != "" {
		cfg.KIS.Domain = v
	}
	if v := os.Getenv("KIS_ACCOUNT_NO"); v != "" {
		cfg.KIS.AccountNo = v
	}
	if v := os.Getenv("KIS_ACCOUNT_CD"); v != "" {
		cfg.KIS.AccountCd = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.KIS.Domain == "" {
		cfg.KIS.Domain = "https://openapi.koreainvestment.com:9443"
	}
	if cfg.Backtest.InitialCash == 0 {
		cfg.Backtest.InitialCash = 2_500_000
	}
	if cfg.Backtest.Skip == 0 {
		cfg.Backtest.Skip = 1
	}
	if cfg.Backtest.Horizon == 0 {
		cfg.Backtest.Horizon = 240
	}
	if cfg.Gather.RateLimitPerMin == 0 {
		cfg.Gather.RateLimitPerMin = 60
	}
}
