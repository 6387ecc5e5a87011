package cache

import (
	"strings"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/songbook/songcache/internal/datapath"
)

func TestDecodeRejectsUnknownField(t *testing.T) {
	rec := sampleRecord(t, datapath.New("/songs", "song.sg"))
	raw, err := encodeRecord(rec, false)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendString(raw, "drift")

	if _, err := decodeRecord(raw); err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestDecodeRequiresFields(t *testing.T) {
	var body []byte
	body = appendStrings(body, fieldTitles, []string{"Help!"})
	body = appendStrings(body, fieldUnprefixedTitles, []string{"Help!"})
	raw := append([]byte(codecMagic), codecSchema, 0)
	raw = append(raw, body...)

	if _, err := decodeRecord(raw); err == nil || !strings.Contains(err.Error(), "missing field") {
		t.Fatalf("expected missing field error, got %v", err)
	}
}

func TestDecodeRejectsTitleCountMismatch(t *testing.T) {
	rec := sampleRecord(t, datapath.New("/songs", "song.sg"))
	rec.UnprefixedTitles = rec.UnprefixedTitles[:1]
	raw, err := encodeRecord(rec, false)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if _, err := decodeRecord(raw); err == nil {
		t.Fatalf("标题数量不一致应视为损坏")
	}
}

func TestDecodeRejectsUnknownFlags(t *testing.T) {
	rec := sampleRecord(t, datapath.New("/songs", "song.sg"))
	raw, err := encodeRecord(rec, false)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	raw[len(codecMagic)+1] = 0x80
	if _, err := decodeRecord(raw); err == nil {
		t.Fatalf("未知 flags 应视为损坏")
	}
}

func TestCompressedPayloadIsSmaller(t *testing.T) {
	rec := sampleRecord(t, datapath.New("/songs", "song.sg"))
	rec.Data["lyrics"] = strings.Repeat("la la la ", 200)

	plain, err := encodeRecord(rec, false)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	packed, err := encodeRecord(rec, true)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}
	if len(packed) >= len(plain) {
		t.Fatalf("zstd 压缩后应更小: %d >= %d", len(packed), len(plain))
	}
	if packed[len(codecMagic)+1]&flagZstd == 0 {
		t.Fatalf("压缩条目应带 zstd 标志")
	}
	if _, err := decodeRecord(packed); err != nil {
		t.Fatalf("decode error: %v", err)
	}
}
