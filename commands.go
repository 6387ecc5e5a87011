package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/songbook/songcache/internal/config"
	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/logging"
	"github.com/songbook/songcache/internal/server"
	"github.com/songbook/songcache/internal/server/routes"
	"github.com/songbook/songcache/internal/version"
)

// newRootCmd 组装全部子命令；每次调用返回全新的命令树，便于测试重复执行。
func newRootCmd() *cobra.Command {
	var configFlag string

	root := &cobra.Command{
		Use:           "songcache",
		Short:         "歌曲文件解析缓存与目录服务",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFlag, "config", "", "配置文件路径（默认 ./songcache.toml，可被 SONGCACHE_CONFIG 覆盖）")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err: fmt.Errorf("解析参数失败: %w", err)}
	})

	configPath := func() string { return resolveConfigPath(configFlag) }

	root.AddCommand(
		newBuildCmd(configPath),
		newShowCmd(configPath),
		newServeCmd(configPath),
		newCheckConfigCmd(configPath),
		newConfigCmd(configPath),
		newVersionCmd(),
	)
	return root
}

func newBuildCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "解析全部歌曲并输出目录",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := loadRuntime(configPath())
			if err != nil {
				return err
			}
			catalog, err := deps.builder.Build(cmd.Context(), deps.cfg.Songbook.DataDirs)
			if err != nil {
				return fmt.Errorf("构建目录失败: %w", err)
			}
			printCatalog(cmd.OutOrStdout(), catalog)
			return nil
		},
	}
}

func newShowCmd(configPath func() string) *cobra.Command {
	var (
		datadir string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "解析单首歌曲并输出记录",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encode, ok := recordEncoders[strings.ToLower(format)]
			if !ok {
				return usageError{err: fmt.Errorf("不支持的输出格式: %s", format)}
			}
			deps, err := loadRuntime(configPath())
			if err != nil {
				return err
			}

			p, err := locateSong(args[0], datadir, deps.cfg.Songbook.DataDirs)
			if err != nil {
				return err
			}
			res, err := deps.resolver.Resolve(p)
			if err != nil {
				return err
			}
			deps.logger.WithFields(logging.SongFields(p, res.Status.String(), res.FromCache)).Info("song_shown")
			return encode(cmd.OutOrStdout(), newRecordView(p, res))
		},
	}
	cmd.Flags().StringVar(&datadir, "datadir", "", "将 <path> 视为该目录下的相对路径并启用缓存")
	cmd.Flags().StringVar(&format, "format", "json", "输出格式：json 或 yaml")
	return cmd
}

func newServeCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动只读目录 HTTP 服务",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := loadRuntime(configPath())
			if err != nil {
				return err
			}
			fields := logging.BaseFields("startup", deps.configPath)
			fields["datadirs"] = len(deps.cfg.Songbook.DataDirs)
			fields["listen_port"] = deps.cfg.Global.ListenPort
			fields["version"] = version.Full()
			deps.logger.WithFields(fields).Info("配置加载完成")

			if err := startHTTPServer(deps); err != nil {
				return fmt.Errorf("HTTP 服务启动失败: %w", err)
			}
			return nil
		},
	}
}

func newCheckConfigCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "仅校验配置后退出",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := loadRuntime(configPath())
			if err != nil {
				return err
			}
			fields := logging.BaseFields("check_config", deps.configPath)
			fields["datadirs"] = len(deps.cfg.Songbook.DataDirs)
			fields["workers"] = deps.cfg.Global.Workers
			fields["cache_compression"] = deps.cfg.Global.CacheCompression
			fields["result"] = "ok"
			deps.logger.WithFields(fields).Info("配置校验通过")
			return nil
		},
	}
}

func newConfigCmd(configPath func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件相关操作",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "写入默认配置文件",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			if err := config.WriteDefault(path, force); err != nil {
				return fmt.Errorf("写入配置失败: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入默认配置: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的配置文件")
	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Args:  noArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	return exactArgs(0)(cmd, args)
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err: err}
		}
		return nil
	}
}

// locateSong 为 show 命令确定 PathIdentity：显式 --datadir 优先，其次是包含该文件的
// 已配置 datadir，都不满足时按绝对路径处理且不使用缓存。
func locateSong(arg, datadir string, datadirs []string) (datapath.Path, error) {
	if datadir != "" {
		abs, err := filepath.Abs(datadir)
		if err != nil {
			return datapath.Path{}, err
		}
		return datapath.New(abs, arg), nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return datapath.Path{}, err
	}
	for _, dir := range datadirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil || !filepath.IsLocal(rel) {
			continue
		}
		return datapath.New(dir, rel), nil
	}
	return datapath.New("", abs), nil
}

func startHTTPServer(deps *runtimeDeps) error {
	port := deps.cfg.Global.ListenPort
	library, err := server.NewLibrary(deps.cfg.Songbook.DataDirs, deps.builder, deps.resolver)
	if err != nil {
		return err
	}
	app, err := server.NewApp(server.AppOptions{
		Logger:      deps.logger,
		Library:     library,
		ListenPort:  port,
		ReadTimeout: deps.cfg.Global.ReadTimeout.DurationValue(),
	})
	if err != nil {
		return err
	}
	routes.RegisterSongRoutes(app, library, deps.logger)
	routes.RegisterParserRoutes(app)

	deps.logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	return app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{DisableStartupMessage: true})
}
