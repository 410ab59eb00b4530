package offline

import "strings"

// Mode 描述单个包的解析方式。
type Mode string

const (
	// ModeOffline 只暴露本地存在 tarball 的版本。
	ModeOffline Mode = "offline"
	// ModeOnline 原样返回存储中的元数据。
	ModeOnline Mode = "online"
)

// AccessConfig 是按包名解析出的访问配置。Proxy 为空或缺失表示该包没有上游。
type AccessConfig struct {
	Pattern string
	Proxy   []string
}

// HasProxy 判断是否配置了至少一个非空上游。
func (a AccessConfig) HasProxy() bool {
	for _, p := range a.Proxy {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// ResolveMode 在全局 offline 开启或包没有上游时返回 ModeOffline，否则返回 ModeOnline。
func ResolveMode(globalOffline bool, access AccessConfig) Mode {
	if globalOffline || !access.HasProxy() {
		return ModeOffline
	}
	return ModeOnline
}
