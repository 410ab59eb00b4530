package config

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别: "+g.LogLevel)
	}
	if g.ScanConcurrency < 0 {
		return newFieldError("Global.ScanConcurrency", "不能为负数")
	}
	if g.RequestTimeout.DurationValue() <= 0 {
		return newFieldError("Global.RequestTimeout", "必须大于 0")
	}

	uplinks := map[string]struct{}{}
	for _, uplink := range c.Uplinks {
		if strings.TrimSpace(uplink.Name) == "" {
			return newFieldError("Uplink[].Name", "不能为空")
		}
		if _, exists := uplinks[uplink.Name]; exists {
			return newFieldError(sectionField("Uplink", uplink.Name, "Name"), "重复")
		}
		uplinks[uplink.Name] = struct{}{}
		if err := validateUplinkURL(uplink.URL); err != nil {
			return wrapFieldError(sectionField("Uplink", uplink.Name, "URL"), "非法的上游地址", err)
		}
	}

	for _, pkg := range c.Packages {
		if pkg.Pattern == "" {
			return newFieldError("Package[].Pattern", "不能为空")
		}
		if _, err := path.Match(pkg.Pattern, ""); err != nil {
			return wrapFieldError(sectionField("Package", pkg.Pattern, "Pattern"), "非法的匹配规则", err)
		}
		for _, proxy := range pkg.Proxy {
			if _, ok := uplinks[proxy]; !ok {
				return newFieldError(sectionField("Package", pkg.Pattern, "Proxy"), fmt.Sprintf("未声明的上游: %s", proxy))
			}
		}
	}

	return nil
}

func validateUplinkURL(raw string) error {
	if raw == "" {
		return errors.New("缺少上游地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，上游: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("上游缺少 Host: %s", raw)
	}
	return nil
}
