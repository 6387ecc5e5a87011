package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// fileLayout 与 Load 读取的 TOML 键一一对应，仅用于生成模板。
type fileLayout struct {
	LogLevel         string          `toml:"LogLevel"`
	LogFilePath      string          `toml:"LogFilePath"`
	LogMaxSize       int             `toml:"LogMaxSize"`
	LogMaxBackups    int             `toml:"LogMaxBackups"`
	LogCompress      bool            `toml:"LogCompress"`
	ListenPort       int             `toml:"ListenPort"`
	ReadTimeout      string          `toml:"ReadTimeout"`
	Workers          int             `toml:"Workers"`
	CacheCompression string          `toml:"CacheCompression"`
	DataDirs         []string        `toml:"DataDirs"`
	SongPattern      string          `toml:"SongPattern"`
	TitlePrefixWords []string        `toml:"TitlePrefixWords"`
	Authwords        authwordsLayout `toml:"Authwords"`
}

type authwordsLayout struct {
	After  []string `toml:"After"`
	Ignore []string `toml:"Ignore"`
	Sep    []string `toml:"Sep"`
}

// ErrConfigExists 表示目标配置文件已存在且未指定覆盖。
var ErrConfigExists = errors.New("config file already exists")

// EncodeDefault 以 TOML 格式输出默认配置。
func EncodeDefault() ([]byte, error) {
	cfg := Default()
	layout := fileLayout{
		LogLevel:         cfg.Global.LogLevel,
		LogFilePath:      cfg.Global.LogFilePath,
		LogMaxSize:       cfg.Global.LogMaxSize,
		LogMaxBackups:    cfg.Global.LogMaxBackups,
		LogCompress:      cfg.Global.LogCompress,
		ListenPort:       cfg.Global.ListenPort,
		ReadTimeout:      cfg.Global.ReadTimeout.DurationValue().String(),
		Workers:          cfg.Global.Workers,
		CacheCompression: cfg.Global.CacheCompression,
		DataDirs:         cfg.Songbook.DataDirs,
		SongPattern:      cfg.Songbook.SongPattern,
		TitlePrefixWords: cfg.Songbook.TitlePrefixWords,
		Authwords: authwordsLayout{
			After:  cfg.Songbook.Authwords.After,
			Ignore: cfg.Songbook.Authwords.Ignore,
			Sep:    cfg.Songbook.Authwords.Sep,
		},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(layout); err != nil {
		return nil, fmt.Errorf("生成默认配置失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteDefault 将默认配置写入 path；文件已存在且 force 为 false 时返回 ErrConfigExists。
func WriteDefault(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	payload, err := EncodeDefault()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	return os.WriteFile(path, payload, 0o644)
}
