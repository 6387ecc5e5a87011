package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/song"
	"github.com/songbook/songcache/internal/songbook"
)

// ErrUnknownDataDir 表示请求的 datadir 序号未配置。
var ErrUnknownDataDir = errors.New("unknown datadir")

// ErrInvalidSubpath 表示请求路径为空、为绝对路径或试图跳出 datadir。
var ErrInvalidSubpath = errors.New("invalid song path")

// CatalogBuilder 构建整个目录，*songbook.Builder 即为其实现。
type CatalogBuilder interface {
	Build(ctx context.Context, datadirs []string) (*songbook.Catalog, error)
}

// DataDir 是一个已配置的歌曲目录及其在 URL 中的序号。
type DataDir struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

// Library 聚合 datadir 列表与解析组件，供路由层直接复用。
type Library struct {
	dirs     []string
	builder  CatalogBuilder
	resolver songbook.SongResolver
}

// NewLibrary 校验并保存 datadir 列表。调用方应在启动阶段创建一次并复用。
func NewLibrary(dirs []string, builder CatalogBuilder, resolver songbook.SongResolver) (*Library, error) {
	if builder == nil {
		return nil, errors.New("catalog builder is required")
	}
	if resolver == nil {
		return nil, errors.New("song resolver is required")
	}
	if len(dirs) == 0 {
		return nil, errors.New("at least one datadir is required")
	}

	seen := make(map[string]struct{}, len(dirs))
	cleaned := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		dir = filepath.Clean(strings.TrimSpace(dir))
		if _, exists := seen[dir]; exists {
			return nil, fmt.Errorf("duplicate datadir detected for %s", dir)
		}
		seen[dir] = struct{}{}
		cleaned = append(cleaned, dir)
	}
	return &Library{dirs: cleaned, builder: builder, resolver: resolver}, nil
}

// Lookup 根据 URL 中的序号查找 datadir。
func (l *Library) Lookup(index string) (string, bool) {
	if l == nil {
		return "", false
	}
	i, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil || i < 0 || i >= len(l.dirs) {
		return "", false
	}
	return l.dirs[i], true
}

// List 按配置顺序返回全部 datadir。
func (l *Library) List() []DataDir {
	if l == nil {
		return nil
	}
	out := make([]DataDir, len(l.dirs))
	for i, dir := range l.dirs {
		out[i] = DataDir{Index: i, Path: dir}
	}
	return out
}

// Build 构建全部 datadir 的目录。
func (l *Library) Build(ctx context.Context) (*songbook.Catalog, error) {
	return l.builder.Build(ctx, append([]string(nil), l.dirs...))
}

// Resolve 解析 datadir index 下的单首歌曲。subpath 使用 "/" 分隔。
func (l *Library) Resolve(index, subpath string) (*song.Resolution, datapath.Path, error) {
	dir, ok := l.Lookup(index)
	if !ok {
		return nil, datapath.Path{}, fmt.Errorf("%w: %s", ErrUnknownDataDir, index)
	}
	local := filepath.FromSlash(subpath)
	if !filepath.IsLocal(local) {
		return nil, datapath.Path{}, fmt.Errorf("%w: %q", ErrInvalidSubpath, subpath)
	}
	p := datapath.New(dir, filepath.Clean(local))
	res, err := l.resolver.Resolve(p)
	return res, p, err
}
