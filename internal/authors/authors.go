// Package authors 将歌曲文件中的作者字段整理为有序的 “姓, 名” 列表。
package authors

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Words 是作者字段处理所需的关键字配置。
type Words struct {
	// After 中的词之前的内容会被丢弃，例如 "Music by John Lennon" 中的 by。
	After []string
	// Ignore 中的名字会被整体忽略，例如 unknown。
	Ignore []string
	// Sep 是除逗号以外用于分隔多个作者的词，例如 and。
	Sep []string
}

// DefaultWords 返回默认关键字。
func DefaultWords() Words {
	return Words{
		After:  []string{"by"},
		Ignore: []string{"unknown"},
		Sep:    []string{"and"},
	}
}

// Formatter 持有编译后的关键字正则，可并发使用。
type Formatter struct {
	sep    *regexp2.Regexp
	after  []*regexp2.Regexp
	ignore map[string]struct{}
}

// Compile 编译关键字配置。
func Compile(words Words) (*Formatter, error) {
	alternatives := []string{`\s*,\s*`}
	for _, word := range words.Sep {
		if word = strings.TrimSpace(word); word != "" {
			alternatives = append(alternatives, `\s+`+regexp2.Escape(word)+`\s+`)
		}
	}
	sep, err := regexp2.Compile(strings.Join(alternatives, "|"), regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("compile author separators: %w", err)
	}

	f := &Formatter{sep: sep, ignore: make(map[string]struct{}, len(words.Ignore))}
	for _, word := range words.After {
		if word = strings.TrimSpace(word); word == "" {
			continue
		}
		re, err := regexp2.Compile(`^.*\b`+regexp2.Escape(word)+`\b(.*)$`, regexp2.IgnoreCase|regexp2.Singleline)
		if err != nil {
			return nil, fmt.Errorf("compile author word %q: %w", word, err)
		}
		f.after = append(f.after, re)
	}
	for _, word := range words.Ignore {
		if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
			f.ignore[word] = struct{}{}
		}
	}
	return f, nil
}

// Format 处理原始作者字段，返回保持原始顺序的作者列表，可能为空。
func (f *Formatter) Format(field string) []string {
	result := []string{}
	for _, author := range f.split(field) {
		author = removeParens(author)
		author = f.removeAfter(author)
		author = strings.Join(strings.Fields(author), " ")
		if author == "" {
			continue
		}
		if _, skip := f.ignore[strings.ToLower(author)]; skip {
			continue
		}
		result = append(result, formatName(author))
	}
	return result
}

// split 按分隔符切分。regexp2 的匹配位置以 rune 计。
func (f *Formatter) split(field string) []string {
	runes := []rune(field)
	var parts []string
	start := 0

	m, err := f.sep.FindRunesMatch(runes)
	for err == nil && m != nil {
		if inBraces(runes[:m.Index]) {
			m, err = f.sep.FindNextMatch(m)
			continue
		}
		parts = append(parts, string(runes[start:m.Index]))
		start = m.Index + m.Length
		m, err = f.sep.FindNextMatch(m)
	}
	return append(parts, string(runes[start:]))
}

func (f *Formatter) removeAfter(author string) string {
	for _, re := range f.after {
		m, err := re.FindStringMatch(author)
		if err != nil || m == nil {
			continue
		}
		if group := m.GroupByNumber(1); group != nil {
			return group.String()
		}
	}
	return author
}

// removeParens 去掉圆括号中的注释，例如生卒年份。
func removeParens(author string) string {
	var b strings.Builder
	depth := 0
	for _, r := range author {
		switch {
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// formatName 将 "名 姓" 转换为 "姓, 名"；花括号包裹的部分视为一个词。
func formatName(author string) string {
	tokens := splitWords(author)
	if len(tokens) == 1 {
		return tokens[0]
	}
	last := tokens[len(tokens)-1]
	return last + ", " + strings.Join(tokens[:len(tokens)-1], " ")
}

func splitWords(author string) []string {
	var tokens []string
	var current strings.Builder
	depth := 0
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, unbrace(current.String()))
			current.Reset()
		}
	}
	for _, r := range author {
		switch {
		case r == '{':
			depth++
			current.WriteRune(r)
		case r == '}':
			depth--
			current.WriteRune(r)
		case r == ' ' && depth <= 0:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return tokens
}

func unbrace(token string) string {
	if len(token) >= 2 && strings.HasPrefix(token, "{") && strings.HasSuffix(token, "}") {
		return token[1 : len(token)-1]
	}
	return token
}

func inBraces(prefix []rune) bool {
	depth := 0
	for _, r := range prefix {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return depth > 0
}
