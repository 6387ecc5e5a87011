package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testConfigPath 返回 testdata 下样例配置的绝对路径，文件可以不存在。
func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	abs, err := filepath.Abs(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("解析样例路径失败: %v", err)
	}
	return abs
}

// writeTempConfig 在临时歌本目录中写入 songcache.toml，并创建默认的 songs 目录。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "songs"), 0o755); err != nil {
		t.Fatalf("创建 songs 目录失败: %v", err)
	}
	path := filepath.Join(dir, DefaultPath)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}
