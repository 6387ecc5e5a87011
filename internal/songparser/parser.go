package songparser

import (
	"errors"
	"fmt"
)

// 解析结果中约定的键。
const (
	KeyTitles    = "@titles"
	KeyLanguages = "@languages"
	KeyAuthors   = "by"
)

// ErrMissingField 表示解析结果缺少必需的键。
var ErrMissingField = errors.New("song data missing required field")

// Parser 将歌曲源文件解析为结构化数据。content 即 fullpath 的完整字节内容，
// 解析器不应再次读取文件，以保证解析的内容与计算哈希的内容一致。
type Parser interface {
	Parse(fullpath string, content []byte) (Data, error)
}

// ParserFunc 让普通函数满足 Parser 接口。
type ParserFunc func(fullpath string, content []byte) (Data, error)

// Parse makes ParserFunc satisfy Parser.
func (f ParserFunc) Parse(fullpath string, content []byte) (Data, error) {
	return f(fullpath, content)
}

// Data 是解析器产出的原始数据，会原样写入缓存记录。
type Data map[string]any

// Titles 返回 @titles，缺失时返回 ErrMissingField。
func (d Data) Titles() ([]string, error) {
	return d.requiredStrings(KeyTitles)
}

// Languages 返回 @languages，缺失时返回 ErrMissingField。
func (d Data) Languages() ([]string, error) {
	return d.requiredStrings(KeyLanguages)
}

// Authors 返回未经处理的作者字段，以及该字段是否存在。
func (d Data) Authors() (string, bool) {
	raw, ok := d[KeyAuthors]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

func (d Data) requiredStrings(key string) ([]string, error) {
	raw, ok := d[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: unexpected element %T", key, item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{v}, nil
	default:
		return nil, fmt.Errorf("%s: unexpected type %T", key, raw)
	}
}
