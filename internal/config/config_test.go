package config

import (
	"os"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "kisquant-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
kis:
  app_key: "test-key"
  app_secret: "test-secret"
  domain: "https://openapivts.koreainvestment.com:29443"
  account_no: "50012345"
  account_cd: "01"
storage:
  data_dir: "/tmp/kisquant/data"
  symbols_file: "/tmp/kisquant/stocks.csv"
  sqlite_path: "/tmp/kisquant/journal.db"
  parquet_dir: "/tmp/kisquant/archive"
logging:
  level: "info"
  format: "json"
backtest:
  start_date: 20230102
  end_date: 20231229
  initial_cash: 1000000
  skip: 1
  horizon: 240
gather:
  start_date: 20200101
  end_date: 20231231
  rate_limit_per_min: 120
  cron: "0 18 * * 1-5"
`)

	// Clear any environment overrides that might interfere.
	os.Unsetenv("KIS_APP_KEY")
	os.Unsetenv("KIS_APP_SECRET")
	os.Unsetenv("KIS_DOMAIN")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- KIS --
	if cfg.KIS.AppKey != "test-key" {
		t.Errorf("KIS.AppKey = %q, want %q", cfg.KIS.AppKey, "test-key")
	}
	if cfg.KIS.Domain != "https://openapivts.koreainvestment.com:29443" {
		t.Errorf("KIS.Domain = %q, want vts endpoint", cfg.KIS.Domain)
	}
	if cfg.KIS.AccountNo != "50012345" || cfg.KIS.AccountCd != "01" {
		t.Errorf("account = %q/%q, want 50012345/01", cfg.KIS.AccountNo, cfg.KIS.AccountCd)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/kisquant/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/kisquant/data")
	}
	if cfg.Storage.SymbolsFile != "/tmp/kisquant/stocks.csv" {
		t.Errorf("Storage.SymbolsFile = %q, want %q", cfg.Storage.SymbolsFile, "/tmp/kisquant/stocks.csv")
	}
	if cfg.Storage.SQLitePath != "/tmp/kisquant/journal.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/kisquant/journal.db")
	}
	if cfg.Storage.ParquetDir != "/tmp/kisquant/archive" {
		t.Errorf("Storage.ParquetDir = %q, want %q", cfg.Storage.ParquetDir, "/tmp/kisquant/archive")
	}

	// -- Logging --
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %q/%q, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}

	// -- Backtest --
	if cfg.Backtest.StartDate != 20230102 || cfg.Backtest.EndDate != 20231229 {
		t.Errorf("backtest window = %d..%d, want 20230102..20231229",
			cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	}
	if cfg.Backtest.InitialCash != 1000000 {
		t.Errorf("Backtest.InitialCash = %d, want 1000000", cfg.Backtest.InitialCash)
	}

	// -- Gather --
	if cfg.Gather.RateLimitPerMin != 120 {
		t.Errorf("Gather.RateLimitPerMin = %d, want 120", cfg.Gather.RateLimitPerMin)
	}
	if cfg.Gather.Cron != "0 18 * * 1-5" {
		t.Errorf("Gather.Cron = %q, want %q", cfg.Gather.Cron, "0 18 * * 1-5")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := cfg.ValidateKIS(); err != nil {
		t.Errorf("ValidateKIS() = %v, want nil", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  data_dir: "/tmp/kisquant/data"
  symbols_file: "/tmp/kisquant/stocks.csv"
`)

	os.Unsetenv("KIS_DOMAIN")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.KIS.Domain != "https://openapi.koreainvestment.com:9443" {
		t.Errorf("KIS.Domain = %q, want production default", cfg.KIS.Domain)
	}
	if cfg.Backtest.InitialCash != 2_500_000 {
		t.Errorf("Backtest.InitialCash = %d, want 2500000", cfg.Backtest.InitialCash)
	}
	if cfg.Backtest.Skip != 1 || cfg.Backtest.Horizon != 240 {
		t.Errorf("momentum params = %d/%d, want 1/240", cfg.Backtest.Skip, cfg.Backtest.Horizon)
	}
	if cfg.Gather.RateLimitPerMin != 60 {
		t.Errorf("Gather.RateLimitPerMin = %d, want 60", cfg.Gather.RateLimitPerMin)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
kis:
  app_key: "yaml-key"
  app_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
  symbols_file: "/original/stocks.csv"
`)

	os.Setenv("KIS_APP_KEY", "env-key")
	os.Setenv("DATA_DIR", "/env/data")
	defer os.Unsetenv("KIS_APP_KEY")
	defer os.Unsetenv("DATA_DIR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.KIS.AppKey != "env-key" {
		t.Errorf("KIS.AppKey = %q, want %q (env override)", cfg.KIS.AppKey, "env-key")
	}
	// app_secret should remain from YAML since no env override was set.
	if cfg.KIS.AppSecret != "yaml-secret" {
		t.Errorf("KIS.AppSecret = %q, want %q (from YAML)", cfg.KIS.AppSecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
}

func TestValidateMissingFields(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: "info"
`)

	os.Unsetenv("KIS_APP_KEY")
	os.Unsetenv("KIS_APP_SECRET")
	os.Unsetenv("DATA_DIR")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want missing storage error")
	}
	if err := cfg.ValidateKIS(); err == nil {
		t.Error("ValidateKIS() = nil, want missing credentials error")
	}
}
