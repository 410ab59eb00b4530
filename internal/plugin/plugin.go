// Package plugin 将 offline.Service 包装为 Registry 直接使用的存储插件：
// 负责按配置构建 Service、启动时提示 offline 策略，并在每次列出包时缓存最新列表。
package plugin

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/offline-storage/internal/config"
	"github.com/any-hub/offline-storage/internal/offline"
)

// Plugin 是 Registry 侧看到的存储插件。
type Plugin struct {
	service     *offline.Service
	logger      *logrus.Logger
	storagePath string

	mu       sync.RWMutex
	packages []string
	listedAt time.Time
}

// Snapshot 是插件状态的只读副本，供诊断接口输出。
type Snapshot struct {
	Offline     bool
	StoragePath string
	Packages    []string
	ListedAt    time.Time
}

// New 按配置构建插件，storage 通常是 storage.Local。
func New(cfg *config.Config, storage offline.Storage, logger *logrus.Logger) (*Plugin, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	service, err := offline.NewService(offline.Options{
		Storage:         storage,
		Access:          cfg,
		Offline:         cfg.Global.Offline,
		ScanConcurrency: cfg.Global.ScanConcurrency,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"action": "plugin_init", "offline": cfg.Global.Offline}
	if cfg.Global.Offline {
		logger.WithFields(fields).Warn("Offline mode set explicitly in config. All packages will be resolved in offline mode.")
	} else {
		logger.WithFields(fields).Warn("Offline mode NOT set explicitly in config. Only packages with no proxy will be resolved in offline mode.")
	}

	return &Plugin{
		service:     service,
		logger:      logger,
		storagePath: cfg.Global.StoragePath,
	}, nil
}

// GetMetadata 按包的解析模式读取元数据。
func (p *Plugin) GetMetadata(ctx context.Context, name string) (*offline.Document, offline.Mode, error) {
	return p.service.GetMetadata(ctx, name)
}

// ListAvailablePackages 重新扫描存储并刷新内存中的包列表；失败时保留上一次的列表。
func (p *Plugin) ListAvailablePackages(ctx context.Context) ([]string, error) {
	packages, err := p.service.ListAvailablePackages(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.packages = append([]string(nil), packages...)
	p.listedAt = time.Now().UTC()
	p.mu.Unlock()

	return packages, nil
}

// Mode 返回包当前生效的解析模式。
func (p *Plugin) Mode(name string) offline.Mode {
	return p.service.ModeFor(name)
}

// Snapshot 返回插件当前状态。
func (p *Plugin) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		Offline:     p.service.Offline(),
		StoragePath: p.storagePath,
		Packages:    append([]string(nil), p.packages...),
		ListedAt:    p.listedAt,
	}
}
