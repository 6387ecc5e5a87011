package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/songbook/songcache/internal/authors"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// 缓存压缩方式。
const (
	CompressionZstd = "zstd"
	CompressionNone = "none"
)

// GlobalConfig 描述进程级运行参数：日志、HTTP 服务与并发度。
type GlobalConfig struct {
	ListenPort       int      `mapstructure:"ListenPort"`
	ReadTimeout      Duration `mapstructure:"ReadTimeout"`
	LogLevel         string   `mapstructure:"LogLevel"`
	LogFilePath      string   `mapstructure:"LogFilePath"`
	LogMaxSize       int      `mapstructure:"LogMaxSize"`
	LogMaxBackups    int      `mapstructure:"LogMaxBackups"`
	LogCompress      bool     `mapstructure:"LogCompress"`
	Workers          int      `mapstructure:"Workers"`
	CacheCompression string   `mapstructure:"CacheCompression"`
}

// AuthwordsConfig 对应 [Authwords] 表，控制作者字段的切分与清理。
type AuthwordsConfig struct {
	After  []string `mapstructure:"After"`
	Ignore []string `mapstructure:"Ignore"`
	Sep    []string `mapstructure:"Sep"`
}

// SongbookConfig 描述歌曲目录与标题/作者的处理规则。
type SongbookConfig struct {
	DataDirs         []string        `mapstructure:"DataDirs"`
	SongPattern      string          `mapstructure:"SongPattern"`
	TitlePrefixWords []string        `mapstructure:"TitlePrefixWords"`
	Authwords        AuthwordsConfig `mapstructure:"Authwords"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig   `mapstructure:",squash"`
	Songbook SongbookConfig `mapstructure:",squash"`
}

// CompressCache 表示写入缓存时是否启用 zstd。
func (g GlobalConfig) CompressCache() bool {
	return g.CacheCompression == CompressionZstd
}

// AuthorWords 将配置转换为 authors 包使用的关键字集合。
func (s SongbookConfig) AuthorWords() authors.Words {
	return authors.Words{
		After:  append([]string(nil), s.Authwords.After...),
		Ignore: append([]string(nil), s.Authwords.Ignore...),
		Sep:    append([]string(nil), s.Authwords.Sep...),
	}
}
