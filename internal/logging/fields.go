package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/songbook/songcache/internal/datapath"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// SongFields 提供 datadir/相对路径/缓存状态字段，供解析日志复用。
func SongFields(p datapath.Path, status string, fromCache bool) logrus.Fields {
	return logrus.Fields{
		"base":       p.Base,
		"subpath":    p.Subpath,
		"status":     status,
		"from_cache": fromCache,
	}
}

// BuildFields 汇总一次构建的统计数据。
func BuildFields(total, hits, misses int) logrus.Fields {
	return logrus.Fields{
		"total":  total,
		"hits":   hits,
		"misses": misses,
	}
}
