package main

import (
	"os"
	"path/filepath"
	"testing"
)

// configFixture 返回 internal/config/testdata 下的配置样例；go test 的工作目录即仓库根目录。
func configFixture(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("internal", "config", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("配置样例 %s 不存在: %v", name, err)
	}
	return path
}

// newSongbookDir 创建包含一首歌曲与配置文件的临时歌本目录。
func newSongbookDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeSongFile(t, filepath.Join(root, "songs", "beatles", "help.sg"), helpSong)
	writeConfigFile(t, root, `
LogLevel = "warn"
DataDirs = ["songs"]
Workers = 2
TitlePrefixWords = ["The"]
`)
	return root
}

func writeSongFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入歌曲失败: %v", err)
	}
}
