package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	defaultListenPort      = 4873
	defaultScanConcurrency = 16
	defaultRequestTimeout  = 30 * time.Second

	// envPrefix 允许用 OFFLINE_STORAGE_<KEY> 覆盖全局配置，例如 OFFLINE_STORAGE_OFFLINE=true。
	envPrefix = "OFFLINE_STORAGE"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(durationDecodeHook(), proxyListDecodeHook())
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Packages {
		applyPackageDefaults(&cfg.Packages[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析存储目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", defaultListenPort)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("Offline", false)
	v.SetDefault("ScanConcurrency", defaultScanConcurrency)
	v.SetDefault("RequestTimeout", "30s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = defaultListenPort
	}
	if g.ScanConcurrency == 0 {
		g.ScanConcurrency = defaultScanConcurrency
	}
	if g.RequestTimeout.DurationValue() == 0 {
		g.RequestTimeout = Duration(defaultRequestTimeout)
	}
	g.LogLevel = strings.ToLower(strings.TrimSpace(g.LogLevel))
}

// applyPackageDefaults 去掉空白上游名，使 "proxy 缺失" 与 "proxy 为空列表" 等价。
func applyPackageDefaults(p *PackageConfig) {
	p.Pattern = strings.TrimSpace(p.Pattern)
	if len(p.Proxy) == 0 {
		p.Proxy = nil
		return
	}
	cleaned := make([]string, 0, len(p.Proxy))
	for _, name := range p.Proxy {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		cleaned = nil
	}
	p.Proxy = cleaned
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// proxyListDecodeHook 允许 Proxy 写成单个字符串（空白分隔多个上游）或字符串数组。
func proxyListDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf([]string(nil))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}
		if s, ok := data.(string); ok {
			return strings.Fields(s), nil
		}
		return data, nil
	}
}
