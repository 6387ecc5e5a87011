// Package record 定义缓存的歌曲记录及其有效性判定。
package record

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// FormatVersion 是当前缓存记录的格式版本。调整记录字段或编码方式时
// 需要递增，以统一作废所有旧缓存。
const FormatVersion = 1

// Record 是一次解析的完整结果，连同计算它所用的内容哈希与格式版本。
// 构建完成后不再修改；源文件变化时会生成新的 Record。
type Record struct {
	Titles           []string
	UnprefixedTitles []string
	Languages        []string
	// Data 保存解析器产出的原始结构化数据，至少包含 @titles/@languages，
	// 存在作者信息时包含 by。
	Data          map[string]any
	Authors       []string
	Base          string
	Subpath       string
	ContentHash   string
	FormatVersion int
}

// New 复制 rec 并规范化其中的切片与 Data，使新建记录与从缓存解码出的
// 记录逐字段相等。Data 中无法编码的值会返回错误。
func New(rec Record) (*Record, error) {
	data, err := NormalizeData(rec.Data)
	if err != nil {
		return nil, err
	}
	return &Record{
		Titles:           cloneStrings(rec.Titles),
		UnprefixedTitles: cloneStrings(rec.UnprefixedTitles),
		Languages:        cloneStrings(rec.Languages),
		Data:             data,
		Authors:          cloneStrings(rec.Authors),
		Base:             rec.Base,
		Subpath:          rec.Subpath,
		ContentHash:      rec.ContentHash,
		FormatVersion:    rec.FormatVersion,
	}, nil
}

// Check 判断记录对给定的内容哈希与期望版本是否仍然有效，先比较哈希。
func (r *Record) Check(contentHash string, version int) Status {
	if r == nil {
		return StatusAbsent
	}
	if r.ContentHash != contentHash {
		return StatusHashMismatch
	}
	if r.FormatVersion != version {
		return StatusVersionMismatch
	}
	return StatusValid
}

// NormalizeData 将任意解析数据转换为 structpb 可表示的形式（列表统一为
// []any，数字统一为 float64）。nil 视为空表。
func NormalizeData(data map[string]any) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	converted := make(map[string]any, len(data))
	for key, value := range data {
		converted[key] = toStructValue(value)
	}
	st, err := structpb.NewStruct(converted)
	if err != nil {
		return nil, fmt.Errorf("normalize song data: %w", err)
	}
	return st.AsMap(), nil
}

func toStructValue(value any) any {
	switch v := value.(type) {
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = toStructValue(item)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = toStructValue(item)
		}
		return out
	default:
		return value
	}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
