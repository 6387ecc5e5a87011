package cache

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/record"
)

// DirName 是每个 datadir 下存放缓存的目录名。磁盘布局遵循：
//
//	<datadir>/.cache/<subpath>    # 编码后的歌曲记录
//
// subpath 中的中间目录在 .cache 下原样保留。
const DirName = ".cache"

// Store 负责歌曲记录缓存的定位与读写。
type Store interface {
	// Locate 返回缓存文件路径，并确保其父目录存在。
	Locate(p datapath.Path) (string, error)

	// Load 尽力读取缓存条目，任何异常都折叠为 StatusAbsent 或 StatusCorrupt，
	// 只有 StatusValid 时返回记录。Load 不校验内容哈希与版本。
	Load(p datapath.Path) (*record.Record, record.Status)

	// Save 编码记录并整体替换缓存文件，失败时返回错误。
	Save(p datapath.Path, rec *record.Record) error
}

// Options 控制 Store 的日志输出与压缩行为。
type Options struct {
	Logger logrus.FieldLogger
	// Compress 为 true 时使用 zstd 压缩写入的记录；读取时总是根据文件头自动识别。
	Compress bool
}

var (
	// ErrNoBase 表示路径不属于任何 datadir，这类记录不会被缓存。
	ErrNoBase = errors.New("path has no datadir")
	// ErrInvalidPath 表示 subpath 会越出 <datadir>/.cache。
	ErrInvalidPath = errors.New("invalid cache path")
)
