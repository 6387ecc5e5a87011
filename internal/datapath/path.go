// Package datapath 描述 “datadir + 相对子路径” 形式的歌曲路径身份。
//
// datadir 为空表示该路径不属于任何受管目录（例如命令行临时指定的文件），
// 这类路径不会写入缓存。
package datapath

import "path/filepath"

// Path 将路径拆分为 Base（datadir）与 Subpath 两部分。
// Subpath 为绝对路径时 Base 总是为空。
type Path struct {
	Base    string
	Subpath string
}

// New 构建 Path；绝对 subpath 会丢弃传入的 base。
func New(base, subpath string) Path {
	if filepath.IsAbs(subpath) {
		base = ""
	}
	return Path{Base: base, Subpath: subpath}
}

// Fullpath 返回 Base 与 Subpath 拼接后的完整路径。
func (p Path) Fullpath() string {
	return filepath.Join(p.Base, p.Subpath)
}

// HasBase 表示路径是否属于某个受管 datadir。
func (p Path) HasBase() bool {
	return p.Base != ""
}

// Clone 返回字段完全相同的独立副本。
func (p Path) Clone() Path {
	return Path{Base: p.Base, Subpath: p.Subpath}
}

// Join 将 extra 追加到 Subpath 上。注意：Join 会修改接收者本身，
// 并返回同一个指针以便链式调用；需要保留原值时请先 Clone。
func (p *Path) Join(extra string) *Path {
	p.Subpath = filepath.Join(p.Subpath, extra)
	return p
}

func (p Path) String() string {
	return p.Fullpath()
}
