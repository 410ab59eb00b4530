package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/offline-storage/internal/config"
	"github.com/any-hub/offline-storage/internal/logging"
	"github.com/any-hub/offline-storage/internal/plugin"
	"github.com/any-hub/offline-storage/internal/server"
	"github.com/any-hub/offline-storage/internal/server/routes"
	"github.com/any-hub/offline-storage/internal/storage"
	"github.com/any-hub/offline-storage/internal/version"
)

const configEnv = "OFFLINE_STORAGE_CONFIG"

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(cfg.Global)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["uplinks"] = config.UplinkNames(cfg.Uplinks)
		fields["package_rules"] = len(cfg.Packages)
		fields["offline"] = cfg.Global.Offline
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	// 启动顺序：配置 → 本地存储 → 存储插件 → Fiber server，
	// 所有请求共享同一个存储实例与包列表缓存。
	store, err := storage.NewLocal(cfg.Global.StoragePath)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化存储目录失败: %v\n", err)
		return 1
	}

	storagePlugin, err := plugin.New(cfg, store, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化存储插件失败: %v\n", err)
		return 1
	}

	fields := logging.BaseFields("startup", opts.configPath)
	fields["uplinks"] = len(cfg.Uplinks)
	fields["package_rules"] = len(cfg.Packages)
	fields["listen_port"] = cfg.Global.ListenPort
	fields["storage_path"] = store.BasePath()
	fields["version"] = version.Full()
	logger.WithFields(fields).Info("配置加载完成")

	if err := startHTTPServer(cfg, store, storagePlugin, logger); err != nil {
		fmt.Fprintf(stdErr, "HTTP 服务启动失败: %v\n", err)
		return 1
	}
	return 0
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("offline-storage", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 "+configEnv+" 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv(configEnv)
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	return cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

func startHTTPServer(cfg *config.Config, store *storage.Local, storagePlugin *plugin.Plugin, logger *logrus.Logger) error {
	port := cfg.Global.ListenPort
	timeout := cfg.Global.RequestTimeout.DurationValue()
	app, err := server.NewApp(server.AppOptions{
		Logger:         logger,
		Packages:       storagePlugin,
		Artifacts:      store,
		RequestTimeout: timeout,
	})
	if err != nil {
		return err
	}
	routes.RegisterDiagnosticRoutes(app, storagePlugin, logger, timeout)

	logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port))
}
