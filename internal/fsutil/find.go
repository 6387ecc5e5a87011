// Package fsutil 提供歌曲目录遍历相关的小工具。
package fsutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// skippedDirs 中的目录不会被遍历：缓存目录与版本库元数据。
var skippedDirs = map[string]struct{}{
	".cache": {},
	".git":   {},
}

// RecursiveFind 返回 root 下文件名匹配 pattern 的全部文件，路径相对 root 且使用 "/" 分隔。
// root 不存在或不是目录时返回空列表。
func RecursiveFind(root, pattern string) ([]string, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	matches := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != root {
				if _, skip := skippedDirs[d.Name()]; skip {
					return filepath.SkipDir
				}
			}
			return nil
		}
		ok, _ := filepath.Match(pattern, d.Name())
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		matches = append(matches, ToPosix(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// ToPosix 将本地路径转换为 "/" 分隔形式。
func ToPosix(path string) string {
	return filepath.ToSlash(path)
}
