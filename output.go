package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/song"
	"github.com/songbook/songcache/internal/songbook"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// printCatalog 以表格形式输出目录，并附带缓存命中统计。
func printCatalog(out io.Writer, catalog *songbook.Catalog) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("TITLE", "AUTHORS", "LANG", "PATH", "CACHE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, s := range catalog.Summaries() {
		title := ""
		if len(s.Titles) > 0 {
			title = s.Titles[0]
		}
		t.Row(
			title,
			strings.Join(s.Authors, "; "),
			strings.Join(s.Languages, ","),
			fmt.Sprintf("%d:%s", s.DataDir, s.Path),
			s.Status,
		)
	}

	fmt.Fprintln(out, t.Render())
	fmt.Fprintf(out, "%d songs, %d from cache, %d parsed\n",
		catalog.Stats.Total, catalog.Stats.Hits, catalog.Stats.Misses)
}

// recordView 是 show 命令输出的记录结构。
type recordView struct {
	Path             string         `json:"path" yaml:"path"`
	Base             string         `json:"base" yaml:"base"`
	Titles           []string       `json:"titles" yaml:"titles"`
	UnprefixedTitles []string       `json:"unprefixed_titles" yaml:"unprefixed_titles"`
	Languages        []string       `json:"languages" yaml:"languages"`
	Authors          []string       `json:"authors" yaml:"authors"`
	ContentHash      string         `json:"content_hash" yaml:"content_hash"`
	FormatVersion    int            `json:"format_version" yaml:"format_version"`
	CacheStatus      string         `json:"cache_status" yaml:"cache_status"`
	FromCache        bool           `json:"from_cache" yaml:"from_cache"`
	Data             map[string]any `json:"data" yaml:"data"`
}

func newRecordView(p datapath.Path, res *song.Resolution) recordView {
	rec := res.Record
	return recordView{
		Path:             p.Subpath,
		Base:             p.Base,
		Titles:           rec.Titles,
		UnprefixedTitles: rec.UnprefixedTitles,
		Languages:        rec.Languages,
		Authors:          rec.Authors,
		ContentHash:      rec.ContentHash,
		FormatVersion:    rec.FormatVersion,
		CacheStatus:      res.Status.String(),
		FromCache:        res.FromCache,
		Data:             rec.Data,
	}
}

type recordEncoder func(io.Writer, recordView) error

var recordEncoders = map[string]recordEncoder{
	"json": func(w io.Writer, v recordView) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	},
	"yaml": func(w io.Writer, v recordView) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	},
}
