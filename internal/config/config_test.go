package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.ReadTimeout.DurationValue() != 30*time.Second {
		t.Fatalf("ReadTimeout 应该自动填充默认值, got %s", cfg.Global.ReadTimeout.DurationValue())
	}
	if cfg.Global.Workers != 2 {
		t.Fatalf("Workers 应当被解析")
	}
	if cfg.Global.CompressCache() {
		t.Fatalf("CacheCompression=none 时不应压缩")
	}
	if cfg.Songbook.SongPattern != "*.sg" {
		t.Fatalf("SongPattern 应退回默认值, got %q", cfg.Songbook.SongPattern)
	}
	if len(cfg.Songbook.TitlePrefixWords) != 3 || cfg.Songbook.TitlePrefixWords[2] != "L'" {
		t.Fatalf("TitlePrefixWords 解析错误: %v", cfg.Songbook.TitlePrefixWords)
	}
}

func TestLoadResolvesDataDirsAgainstConfigDir(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	absTestdata, err := filepath.Abs("testdata")
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	if got := cfg.Songbook.DataDirs[0]; got != filepath.Join(absTestdata, "songs") {
		t.Fatalf("相对目录应基于配置文件目录, got %s", got)
	}
	if got := cfg.Songbook.DataDirs[1]; got != "/srv/extra-songs" {
		t.Fatalf("绝对目录应保持不变, got %s", got)
	}
}

func TestAuthorWordsMergesDefaults(t *testing.T) {
	cfg, err := Load(testConfigPath(t, "valid.toml"))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	words := cfg.Songbook.AuthorWords()
	if len(words.After) != 2 || words.After[1] != "par" {
		t.Fatalf("After 解析错误: %v", words.After)
	}
	if len(words.Sep) != 2 || words.Sep[1] != "et" {
		t.Fatalf("Sep 解析错误: %v", words.Sep)
	}
	if len(words.Ignore) != 1 || words.Ignore[0] != "unknown" {
		t.Fatalf("未配置的 Ignore 应使用默认值: %v", words.Ignore)
	}
}

func TestValidateRejectsEmptyDataDirs(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("不合法的配置应返回错误")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateFieldErrors(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero workers", func(c *Config) { c.Global.Workers = 0 }, "Workers"},
		{"unknown compression", func(c *Config) { c.Global.CacheCompression = "lz4" }, "CacheCompression"},
		{"blank datadir", func(c *Config) { c.Songbook.DataDirs = []string{"songs", " "} }, "DataDirs[1]"},
		{"duplicate datadir", func(c *Config) { c.Songbook.DataDirs = []string{"songs", "./songs"} }, "DataDirs[1]"},
		{"bad pattern", func(c *Config) { c.Songbook.SongPattern = "[" }, "SongPattern"},
		{"blank prefix", func(c *Config) { c.Songbook.TitlePrefixWords = []string{"The", ""} }, "TitlePrefixWords[1]"},
		{"zero timeout", func(c *Config) { c.Global.ReadTimeout = 0 }, "ReadTimeout"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			var fieldErr FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected FieldError, got %v", err)
			}
			if fieldErr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, fieldErr.Field)
			}
		})
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("默认配置应通过校验: %v", err)
	}
}

func validConfig() *Config {
	cfg := Default()
	cfg.Global.ListenPort = 5000
	cfg.Global.ReadTimeout = Duration(time.Second)
	return cfg
}
