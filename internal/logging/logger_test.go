package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/any-hub/offline-storage/internal/config"
)

func TestInitLoggerDestinations(t *testing.T) {
	testCases := []struct {
		name string
		path string
		want *os.File
	}{
		{"default", "", os.Stdout},
		{"stdout", "stdout", os.Stdout},
		{"stderr", "STDERR", os.Stderr},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := InitLogger(config.GlobalConfig{LogLevel: "info", LogFilePath: tc.path})
			if err != nil {
				t.Fatalf("配置失败: %v", err)
			}
			if logger.Out != tc.want {
				t.Fatalf("输出目标错误: %v", logger.Out)
			}
		})
	}
}

func TestInitLoggerFallsBackWhenDirectoryUnavailable(t *testing.T) {
	// 用普通文件占住目录位置，MkdirAll 对任何用户都会失败。
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("写入占位文件失败: %v", err)
	}

	logger, err := InitLogger(config.GlobalConfig{
		LogLevel:    "info",
		LogFilePath: filepath.Join(blocker, "sub", "offline-storage.log"),
	})
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestInitLoggerUsesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "offline-storage.log")
	logger, err := InitLogger(config.GlobalConfig{
		LogLevel:      "debug",
		LogFilePath:   path,
		LogMaxSize:    5,
		LogMaxBackups: 2,
		LogCompress:   true,
	})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}

	rotating, ok := logger.Out.(*lumberjack.Logger)
	if !ok {
		t.Fatalf("文件输出应使用 lumberjack，得到 %T", logger.Out)
	}
	t.Cleanup(func() { _ = rotating.Close() })
	if rotating.MaxSize != 5 || rotating.MaxBackups != 2 || !rotating.Compress {
		t.Fatalf("滚动参数未生效: %+v", rotating)
	}

	logger.Debug("metadata_reconciled")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(config.GlobalConfig{LogLevel: "loud"}); err == nil {
		t.Fatalf("未知日志级别应返回错误")
	}
}

func TestInitLoggerDefaultsToInfo(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.GetLevel().String() != "info" {
		t.Fatalf("空日志级别应默认为 info，得到 %s", logger.GetLevel())
	}
}

func TestRequestFieldsAreEncodedAsJSON(t *testing.T) {
	logger, err := InitLogger(config.GlobalConfig{})
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)

	logger.WithFields(RequestFields("req-1", "@scope/pkg", "offline", 200)).Info("metadata_served")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("日志应为 JSON: %v (%s)", err, buf.String())
	}
	if entry["package"] != "@scope/pkg" || entry["mode"] != "offline" || entry["request_id"] != "req-1" {
		t.Fatalf("字段缺失: %v", entry)
	}
	if entry["msg"] != "metadata_served" {
		t.Fatalf("消息错误: %v", entry["msg"])
	}
}
