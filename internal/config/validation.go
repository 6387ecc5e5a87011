package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置进入构建流程。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if g.ReadTimeout.DurationValue() <= 0 {
		return newFieldError("ReadTimeout", "必须大于 0")
	}
	if g.Workers <= 0 {
		return newFieldError("Workers", "必须大于 0")
	}
	switch g.CacheCompression {
	case CompressionZstd, CompressionNone:
	default:
		return newFieldError("CacheCompression", "仅支持 zstd/none")
	}

	s := c.Songbook
	if len(s.DataDirs) == 0 {
		return errors.New("至少需要配置一个 DataDirs 目录")
	}
	seen := map[string]struct{}{}
	for i, dir := range s.DataDirs {
		if strings.TrimSpace(dir) == "" {
			return newFieldError(dataDirField(i), "不能为空")
		}
		key := filepath.Clean(dir)
		if _, exists := seen[key]; exists {
			return newFieldError(dataDirField(i), "重复")
		}
		seen[key] = struct{}{}
	}

	if strings.TrimSpace(s.SongPattern) == "" {
		return newFieldError("SongPattern", "不能为空")
	}
	if _, err := filepath.Match(s.SongPattern, ""); err != nil {
		return newFieldError("SongPattern", fmt.Sprintf("非法的匹配模式: %v", err))
	}

	for i, word := range s.TitlePrefixWords {
		if strings.TrimSpace(word) == "" {
			return newFieldError(fmt.Sprintf("TitlePrefixWords[%d]", i), "不能为空")
		}
	}
	return nil
}
