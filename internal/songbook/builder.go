// Package songbook 遍历歌曲目录，借助 song.Resolver 并发解析全部歌曲并生成目录。
package songbook

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/fsutil"
	"github.com/songbook/songcache/internal/logging"
	"github.com/songbook/songcache/internal/song"
)

// DefaultPattern 是未配置 Pattern 时匹配的歌曲文件。
const DefaultPattern = "*.sg"

const defaultWorkers = 4

// SongResolver 抽象单首歌曲的解析，*song.Resolver 即为其实现。
type SongResolver interface {
	Resolve(p datapath.Path) (*song.Resolution, error)
}

// Options 控制目录扫描与并发度。
type Options struct {
	Pattern string
	Workers int
	Logger  logrus.FieldLogger
}

// Builder 负责一次完整的目录构建。
type Builder struct {
	resolver SongResolver
	pattern  string
	workers  int
	logger   logrus.FieldLogger
}

// New 创建 Builder。
func New(resolver SongResolver, opts Options) *Builder {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Builder{resolver: resolver, pattern: pattern, workers: workers, logger: logger}
}

// Build 扫描 datadirs 下的全部歌曲并解析。任意一首歌曲失败都会取消整个构建。
func (b *Builder) Build(ctx context.Context, datadirs []string) (*Catalog, error) {
	start := time.Now()

	type job struct {
		dirIndex int
		path     datapath.Path
	}
	var jobs []job
	for i, dir := range datadirs {
		files, err := fsutil.RecursiveFind(dir, b.pattern)
		if err != nil {
			return nil, fmt.Errorf("scan datadir %s: %w", dir, err)
		}
		for _, rel := range files {
			jobs = append(jobs, job{dirIndex: i, path: datapath.New(dir, filepath.FromSlash(rel))})
		}
	}

	entries := make([]Entry, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := b.resolver.Resolve(j.path)
			if err != nil {
				return err
			}
			entries[i] = Entry{
				DataDirIndex: j.dirIndex,
				Path:         j.path,
				Record:       res.Record,
				Status:       res.Status,
				FromCache:    res.FromCache,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := newCatalog(entries)
	b.logger.WithFields(logging.BuildFields(catalog.Stats.Total, catalog.Stats.Hits, catalog.Stats.Misses)).
		WithField("elapsed_ms", time.Since(start).Milliseconds()).
		Info("songbook_built")
	return catalog, nil
}
