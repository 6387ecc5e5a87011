package record

// Status 描述一次缓存查找的结果。除 StatusValid 以外的所有状态在调用方
// 都按“未命中”处理，区分它们只是为了日志与诊断。
type Status int

const (
	// StatusValid 表示缓存条目存在且与当前文件内容、格式版本一致。
	StatusValid Status = iota
	// StatusAbsent 表示缓存文件不存在，或路径不属于任何 datadir。
	StatusAbsent
	// StatusCorrupt 表示缓存文件无法读取或解码。
	StatusCorrupt
	// StatusHashMismatch 表示源文件内容已变化。
	StatusHashMismatch
	// StatusVersionMismatch 表示缓存由另一个格式版本写入。
	StatusVersionMismatch
)

var statusNames = map[Status]string{
	StatusValid:           "valid",
	StatusAbsent:          "absent",
	StatusCorrupt:         "corrupt",
	StatusHashMismatch:    "hash_mismatch",
	StatusVersionMismatch: "version_mismatch",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsMiss 表示该状态需要重新解析源文件。
func (s Status) IsMiss() bool {
	return s != StatusValid
}
