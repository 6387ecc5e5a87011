package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestWriteDefaultRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "songcache.toml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault 返回错误: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("默认模板应能被加载: %v", err)
	}

	def := Default()
	if cfg.Global.ListenPort != def.Global.ListenPort || cfg.Global.Workers != def.Global.Workers {
		t.Fatalf("全局配置与默认值不一致: %+v", cfg.Global)
	}
	if cfg.Global.ReadTimeout != def.Global.ReadTimeout {
		t.Fatalf("ReadTimeout 不一致: %s", cfg.Global.ReadTimeout.DurationValue())
	}
	if cfg.Songbook.DataDirs[0] != filepath.Join(dir, "nested", "songs") {
		t.Fatalf("DataDirs 应解析为配置目录下的 songs: %v", cfg.Songbook.DataDirs)
	}
	if len(cfg.Songbook.TitlePrefixWords) != len(def.Songbook.TitlePrefixWords) {
		t.Fatalf("TitlePrefixWords 不一致: %v", cfg.Songbook.TitlePrefixWords)
	}
}

func TestWriteDefaultRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songcache.toml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}
	if err := WriteDefault(path, false); !errors.Is(err, ErrConfigExists) {
		t.Fatalf("expected ErrConfigExists, got %v", err)
	}
	if err := WriteDefault(path, true); err != nil {
		t.Fatalf("force 覆盖失败: %v", err)
	}
}
