package latex

import (
	"errors"
	"testing"

	"github.com/songbook/songcache/internal/songparser"
)

const helpSong = `\selectlanguage{english}
\songcolumns{2}
% \beginsong{Commented Out}
\beginsong{Help! \\ Aide-moi}
  [by={Lennon and McCartney}, album={Help!}, cover={img/help}]

\begin{verse}
  Help, I need somebody
\end{verse}
\endsong
`

func TestParseHeader(t *testing.T) {
	data, err := Parse("help.sg", []byte(helpSong))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	titles, err := data.Titles()
	if err != nil {
		t.Fatalf("titles error: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Help!" || titles[1] != "Aide-moi" {
		t.Fatalf("unexpected titles %q", titles)
	}

	langs, err := data.Languages()
	if err != nil || len(langs) != 1 || langs[0] != "english" {
		t.Fatalf("unexpected languages %q (%v)", langs, err)
	}

	by, ok := data.Authors()
	if !ok || by != "Lennon and McCartney" {
		t.Fatalf("unexpected authors %q", by)
	}
	if data["album"] != "Help!" || data["cover"] != "img/help" {
		t.Fatalf("options should be kept verbatim: %#v", data)
	}
}

func TestParseDecodesLatin1Source(t *testing.T) {
	content := []byte("\\beginsong{L'\xe9t\xe9 indien}[by={Joe Dassin}]\n\\endsong\n")
	data, err := Parse("ete.sg", content)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	titles, err := data.Titles()
	if err != nil || len(titles) != 1 || titles[0] != "L'été indien" {
		t.Fatalf("unexpected titles %q (%v)", titles, err)
	}
	if by, ok := data.Authors(); !ok || by != "Joe Dassin" {
		t.Fatalf("unexpected authors %q", by)
	}
}

func TestParseWithoutOptions(t *testing.T) {
	data, err := Parse("x.sg", []byte(`\beginsong{Le Temps des cerises}`+"\n\\endsong"))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, ok := data.Authors(); ok {
		t.Fatalf("无 by 选项时不应包含作者")
	}
	langs, err := data.Languages()
	if err != nil || len(langs) != 0 {
		t.Fatalf("expected empty languages, got %v (%v)", langs, err)
	}
}

func TestParseLangOptionAndNestedBraces(t *testing.T) {
	src := `\beginsong{La {\em Vie} en rose}[lang=french, by={Piaf, Édith}]`
	data, err := Parse("x.sg", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	titles, _ := data.Titles()
	if titles[0] != `La {\em Vie} en rose` {
		t.Fatalf("unexpected title %q", titles[0])
	}
	langs, _ := data.Languages()
	if len(langs) != 1 || langs[0] != "french" {
		t.Fatalf("unexpected languages %v", langs)
	}
	if by, _ := data.Authors(); by != "Piaf, Édith" {
		t.Fatalf("逗号在花括号内不应被切分，得到 %q", by)
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"no song", `\begin{verse}la\end{verse}`},
		{"unterminated title", `\beginsong{Help!`},
		{"unterminated options", `\beginsong{Help!}[by={x}`},
		{"empty title", `\beginsong{ \\ }`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse("bad.sg", []byte(tc.src)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := Parse("bad.sg", []byte("nothing")); !errors.Is(err, ErrNoSong) {
		t.Fatalf("expected ErrNoSong, got %v", err)
	}
}

func TestRegisteredForSgFiles(t *testing.T) {
	reg, ok := songparser.Resolve(".sg")
	if !ok {
		t.Fatalf(".sg 解析器应在 init 中注册")
	}
	if reg.Description == "" {
		t.Fatalf("注册信息应包含描述")
	}
}
