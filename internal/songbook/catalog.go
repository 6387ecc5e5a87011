package songbook

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/fsutil"
	"github.com/songbook/songcache/internal/record"
)

// Entry 是目录中的一首歌曲。
type Entry struct {
	DataDirIndex int
	Path         datapath.Path
	Record       *record.Record
	Status       record.Status
	FromCache    bool
}

// SortTitle 返回用于排序的标题：第一个去前缀标题，没有时为空串。
func (e Entry) SortTitle() string {
	if e.Record == nil || len(e.Record.UnprefixedTitles) == 0 {
		return ""
	}
	return e.Record.UnprefixedTitles[0]
}

// Stats 汇总一次构建中缓存的使用情况。
type Stats struct {
	Total    int            `json:"total" yaml:"total"`
	Hits     int            `json:"hits" yaml:"hits"`
	Misses   int            `json:"misses" yaml:"misses"`
	ByStatus map[string]int `json:"by_status" yaml:"by_status"`
}

// Catalog 是排序后的歌曲列表。
type Catalog struct {
	Songs []Entry
	Stats Stats
}

// Summary 是 Entry 对外展示的精简形式。
type Summary struct {
	DataDir          int      `json:"datadir" yaml:"datadir"`
	Path             string   `json:"path" yaml:"path"`
	Titles           []string `json:"titles" yaml:"titles"`
	UnprefixedTitles []string `json:"unprefixed_titles" yaml:"unprefixed_titles"`
	Authors          []string `json:"authors" yaml:"authors"`
	Languages        []string `json:"languages" yaml:"languages"`
	Status           string   `json:"cache_status" yaml:"cache_status"`
	FromCache        bool     `json:"from_cache" yaml:"from_cache"`
}

// Summary 转换为展示用结构。
func (e Entry) Summary() Summary {
	s := Summary{
		DataDir:   e.DataDirIndex,
		Path:      fsutil.ToPosix(e.Path.Subpath),
		Status:    e.Status.String(),
		FromCache: e.FromCache,
	}
	if e.Record != nil {
		s.Titles = e.Record.Titles
		s.UnprefixedTitles = e.Record.UnprefixedTitles
		s.Authors = e.Record.Authors
		s.Languages = e.Record.Languages
	}
	return s
}

// Summaries 按目录顺序返回全部歌曲的展示形式。
func (c *Catalog) Summaries() []Summary {
	out := make([]Summary, 0, len(c.Songs))
	for _, e := range c.Songs {
		out = append(out, e.Summary())
	}
	return out
}

func newCatalog(entries []Entry) *Catalog {
	sortEntries(entries)

	stats := Stats{Total: len(entries), ByStatus: map[string]int{}}
	for _, e := range entries {
		if e.FromCache {
			stats.Hits++
		} else {
			stats.Misses++
		}
		stats.ByStatus[e.Status.String()]++
	}
	return &Catalog{Songs: entries, Stats: stats}
}

// sortEntries 按第一个去前缀标题做本地化排序，标题相同时按完整路径排序。
func sortEntries(entries []Entry) {
	collator := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(entries, func(i, j int) bool {
		if c := collator.CompareString(entries[i].SortTitle(), entries[j].SortTitle()); c != 0 {
			return c < 0
		}
		return entries[i].Path.Fullpath() < entries[j].Path.Fullpath()
	})
}
