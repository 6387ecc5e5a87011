package logging

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/songbook/songcache/internal/cache"
	"github.com/songbook/songcache/internal/config"
	"github.com/songbook/songcache/internal/datapath"
)

func testConfig(logLevel, logFile string) *config.Config {
	cfg := config.Default()
	cfg.Global.LogLevel = logLevel
	cfg.Global.LogFilePath = logFile
	cfg.Songbook.DataDirs = []string{"/srv/songs", "/srv/extra"}
	return cfg
}

func TestInitLoggerDefaultsToStdout(t *testing.T) {
	logger, err := InitLogger(testConfig("info", ""))
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("未指定文件时应输出到 stdout")
	}
}

func TestInitLoggerRequiresConfig(t *testing.T) {
	if _, err := InitLogger(nil); err == nil {
		t.Fatalf("nil 配置应返回错误")
	}
}

func TestInitLoggerFallsBackWhenLogDirBlocked(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("写入占位文件失败: %v", err)
	}

	logger, err := InitLogger(testConfig("info", filepath.Join(blocker, "songcache.log")))
	if err != nil {
		t.Fatalf("初始化不应失败: %v", err)
	}
	if logger.Out != os.Stdout {
		t.Fatalf("fallback 时应退回 stdout")
	}
}

func TestInitLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "songcache.log")
	logger, err := InitLogger(testConfig("debug", path))
	if err != nil {
		t.Fatalf("配置失败: %v", err)
	}
	logger.Info("test")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("预期创建日志文件: %v", err)
	}
	if !strings.Contains(string(content), `"logger_ready"`) || !strings.Contains(string(content), `"/srv/songs"`) {
		t.Fatalf("debug 级别应记录 logger_ready 与 datadirs: %s", content)
	}
}

func TestInitLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := InitLogger(testConfig("loud", "")); err == nil {
		t.Fatalf("非法日志级别应返回错误")
	}
}

func TestLoggerFieldsCarrySongbookContext(t *testing.T) {
	cfg := testConfig("warn", "/var/log/songcache.log")
	fields := LoggerFields(cfg, "stdout")
	if fields["cache_dir"] != cache.DirName || fields["log_target"] != "stdout" {
		t.Fatalf("缓存/输出字段不正确: %+v", fields)
	}
	if !reflect.DeepEqual(fields["datadirs"], []string{"/srv/songs", "/srv/extra"}) {
		t.Fatalf("datadirs 字段不正确: %+v", fields["datadirs"])
	}
	if fields["log_file"] != "/var/log/songcache.log" {
		t.Fatalf("log_file 字段不正确: %+v", fields)
	}
	if _, ok := LoggerFields(testConfig("info", ""), "stdout")["log_file"]; ok {
		t.Fatalf("未配置文件时不应包含 log_file")
	}
}

func TestSongFieldsCarriesPathAndStatus(t *testing.T) {
	fields := SongFields(datapath.New("/data", "a/b.sg"), "valid", true)
	if fields["base"] != "/data" || fields["subpath"] != "a/b.sg" {
		t.Fatalf("路径字段不正确: %+v", fields)
	}
	if fields["status"] != "valid" || fields["from_cache"] != true {
		t.Fatalf("状态字段不正确: %+v", fields)
	}
}

func TestBuildFieldsCountsHitsAndMisses(t *testing.T) {
	fields := BuildFields(3, 2, 1)
	if fields["total"] != 3 || fields["hits"] != 2 || fields["misses"] != 1 {
		t.Fatalf("统计字段不正确: %+v", fields)
	}
}
