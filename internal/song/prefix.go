package song

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
)

// Prefixes 是编译后的标题前缀词列表，按配置顺序匹配。
type Prefixes struct {
	patterns []*regexp2.Regexp
}

// CompilePrefixes 编译前缀词。前缀按字面量处理，正则元字符会被转义。
// 单词边界按 Unicode 判断，因此 "L'" 可以匹配 "L'été"。
func CompilePrefixes(words []string) (*Prefixes, error) {
	p := &Prefixes{}
	for _, word := range words {
		if strings.TrimSpace(word) == "" {
			continue
		}
		re, err := regexp2.Compile(`^(?:`+regexp2.Escape(word)+`)\b\s*(.*)$`, regexp2.Singleline)
		if err != nil {
			return nil, fmt.Errorf("compile title prefix %q: %w", word, err)
		}
		p.patterns = append(p.patterns, re)
	}
	return p, nil
}

// Strip 去掉标题开头第一个匹配的前缀及其后的空白；没有匹配时原样返回。
func (p *Prefixes) Strip(title string) string {
	if p == nil {
		return title
	}
	for _, re := range p.patterns {
		m, err := re.FindStringMatch(title)
		if err != nil || m == nil {
			continue
		}
		return m.GroupByNumber(1).String()
	}
	return title
}

// StripPrefix 是 CompilePrefixes + Strip 的便捷形式，适合一次性调用。
func StripPrefix(title string, words []string) string {
	p, err := CompilePrefixes(words)
	if err != nil {
		return title
	}
	return p.Strip(title)
}
