package server

import (
	"context"
	"errors"
	"testing"

	"github.com/songbook/songcache/internal/datapath"
	"github.com/songbook/songcache/internal/song"
	"github.com/songbook/songcache/internal/songbook"
)

type recordingResolver struct {
	last datapath.Path
}

func (r *recordingResolver) Resolve(p datapath.Path) (*song.Resolution, error) {
	r.last = p
	return &song.Resolution{}, nil
}

type recordingBuilder struct {
	dirs []string
}

func (b *recordingBuilder) Build(ctx context.Context, datadirs []string) (*songbook.Catalog, error) {
	b.dirs = datadirs
	return &songbook.Catalog{}, nil
}

func TestNewLibraryRejectsDuplicates(t *testing.T) {
	if _, err := NewLibrary([]string{"/a", "/a/"}, stubBuilder{}, stubResolver{}); err == nil {
		t.Fatalf("duplicate datadirs should fail")
	}
	if _, err := NewLibrary(nil, stubBuilder{}, stubResolver{}); err == nil {
		t.Fatalf("empty datadirs should fail")
	}
}

func TestLibraryLookupAndList(t *testing.T) {
	lib, err := NewLibrary([]string{"/a", "/b"}, stubBuilder{}, stubResolver{})
	if err != nil {
		t.Fatalf("library: %v", err)
	}
	if dir, ok := lib.Lookup("1"); !ok || dir != "/b" {
		t.Fatalf("lookup 1 = %s %v", dir, ok)
	}
	for _, bad := range []string{"2", "-1", "b", ""} {
		if _, ok := lib.Lookup(bad); ok {
			t.Fatalf("lookup %q should fail", bad)
		}
	}
	list := lib.List()
	if len(list) != 2 || list[1].Index != 1 || list[1].Path != "/b" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestLibraryResolveBuildsPathIdentity(t *testing.T) {
	resolver := &recordingResolver{}
	builder := &recordingBuilder{}
	lib, err := NewLibrary([]string{"/a"}, builder, resolver)
	if err != nil {
		t.Fatalf("library: %v", err)
	}

	if _, p, err := lib.Resolve("0", "x/y.sg"); err != nil || p.Base != "/a" || p.Subpath != "x/y.sg" {
		t.Fatalf("unexpected resolve result %+v err=%v", p, err)
	}
	if resolver.last.Fullpath() != "/a/x/y.sg" {
		t.Fatalf("resolver received %s", resolver.last.Fullpath())
	}

	for _, bad := range []string{"", "../x.sg", "/etc/passwd", "a/../../x.sg"} {
		if _, _, err := lib.Resolve("0", bad); !errors.Is(err, ErrInvalidSubpath) {
			t.Fatalf("subpath %q should be rejected, got %v", bad, err)
		}
	}
	if _, _, err := lib.Resolve("3", "x.sg"); !errors.Is(err, ErrUnknownDataDir) {
		t.Fatalf("expected ErrUnknownDataDir, got %v", err)
	}

	if _, err := lib.Build(context.Background()); err != nil || len(builder.dirs) != 1 {
		t.Fatalf("build should receive datadirs: %v %v", builder.dirs, err)
	}
}
