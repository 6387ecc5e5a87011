package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/songbook/songcache/internal/cache"
	"github.com/songbook/songcache/internal/config"
)

// InitLogger 根据配置初始化 JSON 结构化日志。日志文件不可用时退回 stdout，
// 并在告警中带上 datadir 与缓存目录，便于定位是哪个歌本实例。
func InitLogger(cfg *config.Config) (*logrus.Logger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置为空")
	}
	global := cfg.Global
	level, err := logrus.ParseLevel(global.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}

	output, target, outErr := buildOutput(global)
	if outErr != nil {
		fmt.Fprintf(os.Stderr, "songcache: 日志文件 %s 不可用，改为输出到 stdout: %v\n", global.LogFilePath, outErr)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	fields := LoggerFields(cfg, target)
	if outErr != nil {
		logger.WithFields(fields).WithError(outErr).Warn("logger_fallback")
	} else {
		logger.WithFields(fields).Debug("logger_ready")
	}

	return logger, nil
}

// LoggerFields 描述日志输出目标以及本实例管理的歌曲目录。
func LoggerFields(cfg *config.Config, target string) logrus.Fields {
	fields := logrus.Fields{
		"action":     "logger_init",
		"log_target": target,
		"log_level":  cfg.Global.LogLevel,
		"cache_dir":  cache.DirName,
		"datadirs":   append([]string(nil), cfg.Songbook.DataDirs...),
	}
	if cfg.Global.LogFilePath != "" {
		fields["log_file"] = cfg.Global.LogFilePath
	}
	return fields
}

// buildOutput 返回日志 Writer 与目标名称（stdout 或文件路径）；
// 日志目录无法创建时降级到 stdout 并返回错误。
func buildOutput(global config.GlobalConfig) (io.Writer, string, error) {
	if global.LogFilePath == "" {
		return os.Stdout, "stdout", nil
	}

	if err := os.MkdirAll(filepath.Dir(global.LogFilePath), 0o755); err != nil {
		return os.Stdout, "stdout", fmt.Errorf("创建日志目录失败: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   global.LogFilePath,
		MaxSize:    global.LogMaxSize,
		MaxBackups: global.LogMaxBackups,
		Compress:   global.LogCompress,
		LocalTime:  true,
	}, global.LogFilePath, nil
}
