package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"hecos/internal/model"
)

func TestDefaultConfig_Catalog(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Sheets) != 7 {
		t.Fatalf("unexpected sheet count: %d", len(cfg.Sheets))
	}
	if cfg.Sheets[0].Label != "Monthly Sales Data" || cfg.Sheets[6].Kind != model.SheetKindGoals {
		t.Fatalf("unexpected catalog: %+v", cfg.Sheets)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.FetchTimeout() != 15*time.Second || cfg.ClockInterval() != time.Second {
		t.Fatalf("unexpected durations: %v %v", cfg.FetchTimeout(), cfg.ClockInterval())
	}
}

func TestLoadConfigWithInfo_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvFetchTimeout, "")
	t.Setenv(EnvDevMode, "")

	cfg, info, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), ConfigFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Path != "" || info.PortSpecified {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 20262 || len(cfg.Sheets) != 7 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigWithInfo_FileAndEnv(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvFetchTimeout, "3s")
	t.Setenv(EnvDevMode, "")

	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
[server]
port = 18080

[[sheets]]
label = "Local Goals"
url = "file:///tmp/goals.csv"
kind = "goals"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, info, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !info.PortSpecified || info.Path != path {
		t.Fatalf("unexpected info: %+v", info)
	}
	if cfg.Server.Port != 18080 {
		t.Fatalf("unexpected port: %d", cfg.Server.Port)
	}
	if len(cfg.Sheets) != 1 || cfg.Sheets[0].Kind != model.SheetKindGoals {
		t.Fatalf("sheets from file should replace defaults: %+v", cfg.Sheets)
	}
	if cfg.FetchTimeout() != 3*time.Second {
		t.Fatalf("env timeout not applied: %v", cfg.FetchTimeout())
	}
}

func TestLoadConfigWithInfo_DotEnv(t *testing.T) {
	t.Setenv(EnvFetchTimeout, "")
	t.Setenv(EnvDevMode, "")
	// godotenv 不覆盖已存在的变量，先移除
	t.Setenv(EnvPort, "")
	os.Unsetenv(EnvPort)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(EnvPort+"=19999\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, info, err := LoadConfigWithInfo(filepath.Join(dir, ConfigFileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 19999 || !info.PortSpecified {
		t.Fatalf(".env port not applied: %d %+v", cfg.Server.Port, info)
	}
}

func TestLoadConfigWithInfo_InvalidEnv(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	if _, _, err := LoadConfigWithInfo(filepath.Join(t.TempDir(), ConfigFileName)); err == nil {
		t.Fatalf("expected error for invalid %s", EnvPort)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sheets = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty catalog")
	}

	cfg = DefaultConfig()
	cfg.Sheets[2].URL = " "
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty url")
	}

	cfg = DefaultConfig()
	cfg.Server.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv(EnvPort, "")
	t.Setenv(EnvFetchTimeout, "")
	t.Setenv(EnvDevMode, "")

	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := DefaultConfig()
	cfg.Server.Port = 21000
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, _, err := LoadConfigWithInfo(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Server.Port != 21000 || len(loaded.Sheets) != 7 || loaded.Sheets[3].Label != "Regional Sales" {
		t.Fatalf("unexpected round trip: %+v", loaded)
	}
}
