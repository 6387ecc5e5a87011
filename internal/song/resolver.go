// Package song 负责 “读取源文件 → 校验缓存 → 命中则复用，否则解析并回写缓存”
// 的完整流程。
package song

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/authors"
	"github.com/songbook/songcache/internal/cache"
	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/logging"
	"github.com/songbook/songcache/internal/record"
	"github.com/songbook/songcache/internal/songparser"
)

// AuthorFormatter 将原始作者字段整理为有序列表。
type AuthorFormatter interface {
	Format(field string) []string
}

// Options 描述 Resolver 的依赖，零值字段使用默认实现。
type Options struct {
	Store cache.Store
	// Parser 为空时按文件扩展名从 songparser 注册表中查找。
	Parser           songparser.Parser
	Authors          AuthorFormatter
	TitlePrefixWords []string
	Logger           logrus.FieldLogger
	// FormatVersion 为 0 时使用 record.FormatVersion。
	FormatVersion int
}

// Resolver 组合缓存与解析器，每次 Resolve 相互独立，可并发调用。
type Resolver struct {
	store    cache.Store
	parser   songparser.Parser
	authors  AuthorFormatter
	prefixes *Prefixes
	logger   logrus.FieldLogger
	version  int
}

// Resolution 是一次解析的结果。Status 记录缓存查找的结论，仅用于日志与诊断。
type Resolution struct {
	Record    *record.Record
	Status    record.Status
	FromCache bool
}

// NewResolver 根据 Options 构建 Resolver。
func NewResolver(opts Options) (*Resolver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	store := opts.Store
	if store == nil {
		store = cache.NewStore(cache.Options{Logger: logger})
	}

	formatter := opts.Authors
	if formatter == nil {
		compiled, err := authors.Compile(authors.DefaultWords())
		if err != nil {
			return nil, err
		}
		formatter = compiled
	}

	prefixes, err := CompilePrefixes(opts.TitlePrefixWords)
	if err != nil {
		return nil, err
	}

	version := opts.FormatVersion
	if version == 0 {
		version = record.FormatVersion
	}

	return &Resolver{
		store:    store,
		parser:   opts.Parser,
		authors:  formatter,
		prefixes: prefixes,
		logger:   logger,
		version:  version,
	}, nil
}

// Resolve 返回 p 对应的歌曲记录。源文件不可读、解析失败或缓存写入失败
// 都会返回错误；缓存缺失、损坏或过期只会导致重新解析。
func (r *Resolver) Resolve(p datapath.Path) (*Resolution, error) {
	content, err := os.ReadFile(p.Fullpath())
	if err != nil {
		return nil, fmt.Errorf("read song %s: %w", p.Fullpath(), err)
	}
	hash := ContentHash(content)

	status := record.StatusAbsent
	if p.HasBase() {
		var cached *record.Record
		cached, status = r.TryLoadValid(p, hash)
		if status == record.StatusValid {
			r.logger.WithFields(logging.SongFields(p, status.String(), true)).Debug("song_resolved")
			return &Resolution{Record: cached, Status: status, FromCache: true}, nil
		}
	}

	rec, err := r.BuildFresh(p, hash, content)
	if err != nil {
		return nil, err
	}

	if p.HasBase() {
		if err := r.store.Save(p, rec); err != nil {
			return nil, fmt.Errorf("save cache for %s: %w", p.Fullpath(), err)
		}
	}

	r.logger.WithFields(logging.SongFields(p, status.String(), false)).Debug("song_resolved")
	return &Resolution{Record: rec, Status: status}, nil
}

// TryLoadValid 读取缓存并按内容哈希与格式版本校验，只有 StatusValid 时返回记录。
func (r *Resolver) TryLoadValid(p datapath.Path, contentHash string) (*record.Record, record.Status) {
	if !p.HasBase() {
		return nil, record.StatusAbsent
	}

	cached, status := r.store.Load(p)
	if status != record.StatusValid {
		return nil, status
	}

	if status = cached.Check(contentHash, r.version); status != record.StatusValid {
		r.logger.WithFields(logging.SongFields(p, status.String(), false)).Debug("cache_entry_stale")
		return nil, status
	}
	return cached, status
}

// BuildFresh 调用解析器与作者格式化，构建带有 contentHash 与当前格式版本的新记录。
// 它不读写缓存。
func (r *Resolver) BuildFresh(p datapath.Path, contentHash string, content []byte) (*record.Record, error) {
	parser, err := r.parserFor(p)
	if err != nil {
		return nil, err
	}

	data, err := parser.Parse(p.Fullpath(), content)
	if err != nil {
		return nil, fmt.Errorf("parse song %s: %w", p.Fullpath(), err)
	}
	if data == nil {
		return nil, fmt.Errorf("parse song %s: %w", p.Fullpath(), errors.New("parser returned no data"))
	}

	titles, err := data.Titles()
	if err != nil {
		return nil, fmt.Errorf("parse song %s: %w", p.Fullpath(), err)
	}
	languages, err := data.Languages()
	if err != nil {
		return nil, fmt.Errorf("parse song %s: %w", p.Fullpath(), err)
	}

	unprefixed := make([]string, len(titles))
	for i, title := range titles {
		unprefixed[i] = r.prefixes.Strip(title)
	}

	authorList := []string{}
	if field, ok := data.Authors(); ok {
		authorList = r.authors.Format(field)
	}

	rec, err := record.New(record.Record{
		Titles:           titles,
		UnprefixedTitles: unprefixed,
		Languages:        languages,
		Data:             data,
		Authors:          authorList,
		Base:             p.Base,
		Subpath:          p.Subpath,
		ContentHash:      contentHash,
		FormatVersion:    r.version,
	})
	if err != nil {
		return nil, fmt.Errorf("build record for %s: %w", p.Fullpath(), err)
	}
	return rec, nil
}

func (r *Resolver) parserFor(p datapath.Path) (songparser.Parser, error) {
	if r.parser != nil {
		return r.parser, nil
	}
	return songparser.ForPath(p.Fullpath())
}
