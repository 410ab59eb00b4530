package config

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/any-hub/offline-storage/internal/offline"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// GlobalConfig 描述全局运行时行为。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	StoragePath     string   `mapstructure:"StoragePath"`
	Offline         bool     `mapstructure:"Offline"`
	ScanConcurrency int      `mapstructure:"ScanConcurrency"`
	RequestTimeout  Duration `mapstructure:"RequestTimeout"`
}

// UplinkConfig 声明一个可被包规则引用的上游 Registry。
type UplinkConfig struct {
	Name string `mapstructure:"Name"`
	URL  string `mapstructure:"URL"`
}

// PackageConfig 描述一条按包名匹配的访问规则，Proxy 列出可用上游。
type PackageConfig struct {
	Pattern string   `mapstructure:"Pattern"`
	Proxy   []string `mapstructure:"Proxy"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig    `mapstructure:",squash"`
	Uplinks  []UplinkConfig  `mapstructure:"Uplink"`
	Packages []PackageConfig `mapstructure:"Package"`
}

// AccessFor 返回第一条匹配包名的规则；没有规则匹配时返回空配置（即没有上游）。
func (c *Config) AccessFor(name string) offline.AccessConfig {
	if c == nil {
		return offline.AccessConfig{}
	}
	for _, pkg := range c.Packages {
		if MatchPattern(pkg.Pattern, name) {
			return offline.AccessConfig{
				Pattern: pkg.Pattern,
				Proxy:   append([]string(nil), pkg.Proxy...),
			}
		}
	}
	return offline.AccessConfig{}
}

// MatchPattern 判断包名是否匹配规则：** 匹配任意包名，"@scope/**" 匹配整个 scope，
// 其余写法按 path.Match 逐段匹配（* 不跨越 "/"）。
func MatchPattern(pattern, name string) bool {
	pattern = strings.TrimSpace(pattern)
	switch {
	case pattern == "":
		return false
	case pattern == "**":
		return true
	case strings.HasSuffix(pattern, "/**"):
		return strings.HasPrefix(name, strings.TrimSuffix(pattern, "**"))
	}
	matched, err := path.Match(pattern, name)
	return err == nil && matched
}

// UplinkNames 返回所有上游名称，供日志字段使用。
func UplinkNames(uplinks []UplinkConfig) []string {
	if len(uplinks) == 0 {
		return nil
	}
	result := make([]string, len(uplinks))
	for i, uplink := range uplinks {
		result[i] = uplink.Name
	}
	return result
}
