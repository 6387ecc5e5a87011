// Package latex 解析 patacrep 风格的 .sg 歌曲文件头部，并注册为 .sg 的默认解析器。
//
// 只关心文件头：\beginsong{标题 \\ 副标题}[by={作者}, album={...}] 与
// \selectlanguage{...}，歌词正文不做解析。
package latex

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/songbook/songcache/internal/songparser"
)

// Extension 是本解析器处理的文件扩展名。
const Extension = ".sg"

// ErrNoSong 表示文件中没有 \beginsong。
var ErrNoSong = errors.New(`missing \beginsong`)

const (
	beginSong      = `\beginsong`
	selectLanguage = `\selectlanguage`
)

// decodeSource 返回 UTF-8 文本。非 UTF-8 的内容按 Latin-1 解码，
// 这是 patacrep 旧歌曲文件最常见的编码。
func decodeSource(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return strings.ToValidUTF8(string(decoded), string(utf8.RuneError)), nil
}

func init() {
	songparser.MustRegister(songparser.Registration{
		Extension:   Extension,
		Description: "LaTeX song files (\\beginsong header, \\selectlanguage)",
		Parser:      songparser.ParserFunc(Parse),
	})
}

// Parse 解析 .sg 文件内容。选项中的每个键都会原样写入 Data，
// lang 选项会并入 @languages。
func Parse(fullpath string, content []byte) (songparser.Data, error) {
	text, err := decodeSource(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fullpath, err)
	}
	src := stripComments(text)

	idx := strings.Index(src, beginSong)
	if idx < 0 {
		return nil, fmt.Errorf("%s: %w", fullpath, ErrNoSong)
	}
	pos := skipSpace(src, idx+len(beginSong))

	rawTitles, pos, err := readGroup(src, pos, '{', '}')
	if err != nil {
		return nil, fmt.Errorf("%s: song titles: %w", fullpath, err)
	}

	options := map[string]string{}
	if next := skipSpace(src, pos); next < len(src) && src[next] == '[' {
		rawOptions, _, err := readGroup(src, next, '[', ']')
		if err != nil {
			return nil, fmt.Errorf("%s: song options: %w", fullpath, err)
		}
		options = parseOptions(rawOptions)
	}

	titles := splitTitles(rawTitles)
	if len(titles) == 0 {
		return nil, fmt.Errorf("%s: song has no title", fullpath)
	}

	languages := findLanguages(src)
	if lang := strings.TrimSpace(options["lang"]); lang != "" {
		languages = appendUnique(languages, lang)
	}

	data := songparser.Data{}
	for key, value := range options {
		data[key] = value
	}
	data[songparser.KeyTitles] = toAny(titles)
	data[songparser.KeyLanguages] = toAny(languages)
	return data, nil
}

// stripComments 去掉 % 开头的行尾注释，保留转义的 \%。
func stripComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if line[j] == '\\' {
				j++
				continue
			}
			if line[j] == '%' {
				lines[i] = line[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

func skipSpace(src string, pos int) int {
	for pos < len(src) && strings.ContainsRune(" \t\r\n", rune(src[pos])) {
		pos++
	}
	return pos
}

// readGroup 读取 src[pos] 处以 open 开始、与之配对的 close 结束的分组，
// 返回分组内容与其后的位置。花括号嵌套与反斜杠转义都会被跳过。
func readGroup(src string, pos int, open, close byte) (string, int, error) {
	if pos >= len(src) || src[pos] != open {
		return "", pos, fmt.Errorf("expected %q at offset %d", open, pos)
	}
	depth := 0
	braces := 0
	for i := pos; i < len(src); i++ {
		switch c := src[i]; {
		case c == '\\':
			i++
		case c == open && (open != '[' || braces == 0):
			depth++
			if open == '{' {
				braces++
			}
		case c == close && (close != ']' || braces == 0):
			depth--
			if close == '}' {
				braces--
			}
			if depth == 0 {
				return src[pos+1 : i], i + 1, nil
			}
		case c == '{':
			braces++
		case c == '}':
			braces--
		}
	}
	return "", len(src), fmt.Errorf("unterminated %q group at offset %d", open, pos)
}

func splitTitles(raw string) []string {
	var titles []string
	for _, part := range strings.Split(raw, `\\`) {
		if title := strings.Join(strings.Fields(part), " "); title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

// parseOptions 解析 key=value 列表，只在最外层按逗号切分，值外层的花括号会被去掉。
func parseOptions(raw string) map[string]string {
	options := map[string]string{}
	depth := 0
	start := 0
	flush := func(end int) {
		item := strings.TrimSpace(raw[start:end])
		if item == "" {
			return
		}
		key, value, found := strings.Cut(item, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		if !found {
			options[key] = ""
			return
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '{' && value[len(value)-1] == '}' {
			value = value[1 : len(value)-1]
		}
		options[key] = strings.Join(strings.Fields(value), " ")
	}

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(raw))
	return options
}

func findLanguages(src string) []string {
	var languages []string
	rest := src
	for {
		idx := strings.Index(rest, selectLanguage)
		if idx < 0 {
			return languages
		}
		pos := skipSpace(rest, idx+len(selectLanguage))
		lang, next, err := readGroup(rest, pos, '{', '}')
		if err != nil {
			rest = rest[idx+len(selectLanguage):]
			continue
		}
		if lang = strings.TrimSpace(lang); lang != "" {
			languages = appendUnique(languages, lang)
		}
		rest = rest[next:]
	}
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
