package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"hecos/internal/model"
)

// 环境变量
const (
	EnvPort         = "HECOS_PORT"
	EnvFetchTimeout = "HECOS_FETCH_TIMEOUT"
	EnvDevMode      = "HECOS_DEV"
)

// ConfigFileName 配置文件名（位于可执行文件同目录）
const ConfigFileName = "config.toml"

const sheetExportBase = "https://docs.google.com/spreadsheets/d/1_5wFyACpq1GsYw3Dw_01UqGOn5gAJH-pCQ-kpxIRjiU/export?format=csv&gid="

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig        `toml:"server"`
	Fetch  FetchConfig         `toml:"fetch"`
	Clock  ClockConfig         `toml:"clock"`
	Sheets []model.SheetSource `toml:"sheets"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// FetchConfig 数据拉取配置
type FetchConfig struct {
	Timeout string `toml:"timeout"` // time.ParseDuration 格式，如 "15s"
}

// ClockConfig 顶栏时钟配置
type ClockConfig struct {
	Interval string `toml:"interval"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string // 实际读取的配置文件；未找到时为空
	PortSpecified bool   // 配置文件或环境变量显式指定了端口
}

// DefaultConfig 默认配置：七个销售数据表
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Fetch: FetchConfig{Timeout: "15s"},
		Clock: ClockConfig{Interval: "1s"},
		Sheets: []model.SheetSource{
			{Label: "Monthly Sales Data", URL: sheetExportBase + "0", Kind: model.SheetKindMonthlySales},
			{Label: "Daily Sales (Current Month)", URL: sheetExportBase + "1184846642", Kind: model.SheetKindDailySales},
			{Label: "Product Performance", URL: sheetExportBase + "24490182", Kind: model.SheetKindProductPerformance},
			{Label: "Regional Sales", URL: sheetExportBase + "143078882", Kind: model.SheetKindRegionalSales},
			{Label: "Real-Time Metrics (Live Data)", URL: sheetExportBase + "1030906733", Kind: model.SheetKindLiveMetrics},
			{Label: "Hourly Sales Today", URL: sheetExportBase + "1784280736", Kind: model.SheetKindHourlySales},
			{Label: "Goals & Targets", URL: sheetExportBase + "1190777355", Kind: model.SheetKindGoals},
		},
	}
}

// FetchTimeout 单次拉取超时
func (c *AppConfig) FetchTimeout() time.Duration {
	return parseDurationOr(c.Fetch.Timeout, 15*time.Second)
}

// ClockInterval 时钟刷新间隔
func (c *AppConfig) ClockInterval() time.Duration {
	return parseDurationOr(c.Clock.Interval, time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if len(c.Sheets) == 0 {
		return errors.New("no sheets configured")
	}
	for i, s := range c.Sheets {
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("sheet %d: label is empty", i)
		}
		if strings.TrimSpace(s.URL) == "" {
			return fmt.Errorf("sheet %d (%s): url is empty", i, s.Label)
		}
	}
	if _, err := time.ParseDuration(c.Fetch.Timeout); c.Fetch.Timeout != "" && err != nil {
		return fmt.Errorf("invalid fetch timeout %q: %w", c.Fetch.Timeout, err)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	serverMap, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultConfigPath 可执行文件同目录下的 config.toml；无法获取时使用当前目录
func DefaultConfigPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, ConfigFileName)
}

// LoadConfigWithInfo 加载配置：默认值 <- config.toml <- .env / 环境变量
// path 为空时使用 DefaultConfigPath；文件不存在时使用默认配置
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{}
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}

	// .env 只补充未设置的环境变量；文件缺失不算错误
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Path = path
		info.PortSpecified = isPortSpecifiedInToml(data)
		loaded := DefaultConfig()
		loaded.Sheets = nil
		if err := toml.Unmarshal(data, loaded); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
		if len(loaded.Sheets) == 0 {
			loaded.Sheets = cfg.Sheets
		}
		cfg = loaded
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := applyEnv(cfg, &info); err != nil {
		return nil, info, err
	}
	return cfg, info, nil
}

// applyEnv 环境变量覆盖
func applyEnv(cfg *AppConfig, info *LoadConfigInfo) error {
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
		info.PortSpecified = true
	}
	if v := strings.TrimSpace(os.Getenv(EnvFetchTimeout)); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("%s: %w", EnvFetchTimeout, err)
		}
		cfg.Fetch.Timeout = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDevMode)); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDevMode, err)
		}
		cfg.Server.DevMode = dev
	}
	return nil
}

// SaveConfig 将配置写入 path（为空时写到默认位置）
func SaveConfig(cfg *AppConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
