package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultPath 是未指定 --config 与 SONGCACHE_CONFIG 时使用的配置文件。
const DefaultPath = "songcache.toml"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
// DataDirs 中的相对路径以配置文件所在目录为基准转换为绝对路径。
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applySongbookDefaults(&cfg.Songbook)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("无法解析配置目录: %w", err)
	}
	for i, dir := range cfg.Songbook.DataDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(baseDir, dir)
		}
		cfg.Songbook.DataDirs[i] = filepath.Clean(dir)
	}

	return &cfg, nil
}

// Default 返回全部取默认值的配置，DataDirs 为相对路径 songs。
func Default() *Config {
	cfg := &Config{
		Global: GlobalConfig{
			ListenPort:       defaultListenPort,
			ReadTimeout:      Duration(defaultReadTimeout),
			LogLevel:         "info",
			LogMaxSize:       100,
			LogMaxBackups:    10,
			LogCompress:      true,
			Workers:          defaultWorkers,
			CacheCompression: CompressionZstd,
		},
		Songbook: SongbookConfig{
			DataDirs:         []string{"songs"},
			SongPattern:      defaultSongPattern,
			TitlePrefixWords: append([]string(nil), defaultTitlePrefixWords...),
		},
	}
	applySongbookDefaults(&cfg.Songbook)
	return cfg
}

const (
	defaultListenPort  = 5080
	defaultReadTimeout = 30 * time.Second
	defaultWorkers     = 4
	defaultSongPattern = "*.sg"
)

var defaultTitlePrefixWords = []string{"The", "A", "An", "Le", "La", "Les", "L'"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", defaultListenPort)
	v.SetDefault("ReadTimeout", "30s")
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("Workers", defaultWorkers)
	v.SetDefault("CacheCompression", CompressionZstd)
	v.SetDefault("DataDirs", []string{"songs"})
	v.SetDefault("SongPattern", defaultSongPattern)
	v.SetDefault("TitlePrefixWords", defaultTitlePrefixWords)
	v.SetDefault("Authwords.After", []string{"by"})
	v.SetDefault("Authwords.Ignore", []string{"unknown"})
	v.SetDefault("Authwords.Sep", []string{"and"})
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = defaultListenPort
	}
	if g.ReadTimeout.DurationValue() == 0 {
		g.ReadTimeout = Duration(defaultReadTimeout)
	}
	if g.Workers == 0 {
		g.Workers = defaultWorkers
	}
	g.CacheCompression = strings.ToLower(strings.TrimSpace(g.CacheCompression))
	if g.CacheCompression == "" {
		g.CacheCompression = CompressionZstd
	}
}

func applySongbookDefaults(s *SongbookConfig) {
	if strings.TrimSpace(s.SongPattern) == "" {
		s.SongPattern = defaultSongPattern
	}
	if s.Authwords.After == nil {
		s.Authwords.After = []string{"by"}
	}
	if s.Authwords.Ignore == nil {
		s.Authwords.Ignore = []string{"unknown"}
	}
	if s.Authwords.Sep == nil {
		s.Authwords.Sep = []string{"and"}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}
