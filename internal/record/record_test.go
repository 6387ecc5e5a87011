package record

import (
	"reflect"
	"testing"
)

func TestCheckStatuses(t *testing.T) {
	rec := &Record{ContentHash: "abc", FormatVersion: FormatVersion}

	testCases := []struct {
		name    string
		hash    string
		version int
		want    Status
	}{
		{"valid", "abc", FormatVersion, StatusValid},
		{"hash changed", "def", FormatVersion, StatusHashMismatch},
		{"version bumped", "abc", FormatVersion + 1, StatusVersionMismatch},
		{"both changed reports hash", "def", FormatVersion + 1, StatusHashMismatch},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := rec.Check(tc.hash, tc.version); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCheckNilRecordIsAbsent(t *testing.T) {
	var rec *Record
	if got := rec.Check("abc", FormatVersion); got != StatusAbsent {
		t.Fatalf("nil 记录应视为 absent，得到 %s", got)
	}
}

func TestStatusIsMiss(t *testing.T) {
	if StatusValid.IsMiss() {
		t.Fatalf("valid 不应视为 miss")
	}
	for _, s := range []Status{StatusAbsent, StatusCorrupt, StatusHashMismatch, StatusVersionMismatch} {
		if !s.IsMiss() {
			t.Fatalf("%s 应视为 miss", s)
		}
	}
	if Status(42).String() != "unknown" {
		t.Fatalf("未知状态应输出 unknown")
	}
}

func TestNewNormalizesData(t *testing.T) {
	rec, err := New(Record{
		Titles: []string{"Help!"},
		Data: map[string]any{
			"@titles":    []string{"Help!"},
			"@languages": []string{"english"},
			"year":       1965,
			"extra":      map[string]string{"album": "Help!"},
		},
	})
	if err != nil {
		t.Fatalf("new error: %v", err)
	}

	want := map[string]any{
		"@titles":    []any{"Help!"},
		"@languages": []any{"english"},
		"year":       float64(1965),
		"extra":      map[string]any{"album": "Help!"},
	}
	if !reflect.DeepEqual(rec.Data, want) {
		t.Fatalf("unexpected data: %#v", rec.Data)
	}
	if rec.Authors == nil || rec.Languages == nil || rec.UnprefixedTitles == nil {
		t.Fatalf("空切片应被规范化为非 nil")
	}
}

func TestNewRejectsUnencodableData(t *testing.T) {
	if _, err := New(Record{Data: map[string]any{"ch": make(chan int)}}); err == nil {
		t.Fatalf("无法编码的数据应返回错误")
	}
}

func TestNewCopiesSlices(t *testing.T) {
	titles := []string{"Help!"}
	rec, err := New(Record{Titles: titles})
	if err != nil {
		t.Fatalf("new error: %v", err)
	}
	titles[0] = "changed"
	if rec.Titles[0] != "Help!" {
		t.Fatalf("记录不应与调用方共享切片")
	}
}
