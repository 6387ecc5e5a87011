package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/authors"
	"github.com/songbook/songcache/internal/cache"
	"github.com/songbook/songcache/internal/config"
	"github.com/songbook/songcache/internal/logging"
	"github.com/songbook/songcache/internal/song"
	"github.com/songbook/songcache/internal/songbook"
)

// runtimeDeps 汇总一次命令执行所需的组件。
type runtimeDeps struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
	resolver   *song.Resolver
	builder    *songbook.Builder
}

// loadRuntime 遵循“配置 → 日志 → 缓存 → 解析器 → 构建器”的顺序初始化，
// 保证所有歌曲共享同一份缓存与作者规则。
func loadRuntime(configPath string) (*runtimeDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := logging.InitLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	formatter, err := authors.Compile(cfg.Songbook.AuthorWords())
	if err != nil {
		return nil, fmt.Errorf("编译作者规则失败: %w", err)
	}

	store := cache.NewStore(cache.Options{
		Logger:   logger,
		Compress: cfg.Global.CompressCache(),
	})

	resolver, err := song.NewResolver(song.Options{
		Store:            store,
		Authors:          formatter,
		TitlePrefixWords: cfg.Songbook.TitlePrefixWords,
		Logger:           logger,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化解析器失败: %w", err)
	}

	builder := songbook.New(resolver, songbook.Options{
		Pattern: cfg.Songbook.SongPattern,
		Workers: cfg.Global.Workers,
		Logger:  logger,
	})

	return &runtimeDeps{
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		resolver:   resolver,
		builder:    builder,
	}, nil
}
