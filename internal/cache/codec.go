package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/songbook/songcache/internal/record"
)

// 缓存文件格式：
//
//	"SGCR" | schema(1 byte) | flags(1 byte) | body
//
// body 是 protobuf wire 格式的 tag/length 字段序列（可选 zstd 压缩），
// 字段集合固定；出现未知字段或缺少必需字段都视为损坏。
const (
	codecMagic          = "SGCR"
	codecSchema    byte = 1
	codecHeaderLen      = len(codecMagic) + 2

	flagZstd byte = 1 << 0
)

const (
	fieldTitles           protowire.Number = 1
	fieldUnprefixedTitles protowire.Number = 2
	fieldLanguages        protowire.Number = 3
	fieldData             protowire.Number = 4
	fieldAuthors          protowire.Number = 5
	fieldBase             protowire.Number = 6
	fieldSubpath          protowire.Number = 7
	fieldContentHash      protowire.Number = 8
	fieldFormatVersion    protowire.Number = 9
)

var requiredFields = []protowire.Number{
	fieldData,
	fieldBase,
	fieldSubpath,
	fieldContentHash,
	fieldFormatVersion,
}

var errTruncated = errors.New("cache entry truncated")

var (
	zstdOnce    sync.Once
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
	zstdInitErr error
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder, error) {
	zstdOnce.Do(func() {
		zstdEncoder, zstdInitErr = zstd.NewWriter(nil)
		if zstdInitErr != nil {
			return
		}
		zstdDecoder, zstdInitErr = zstd.NewReader(nil)
	})
	return zstdEncoder, zstdDecoder, zstdInitErr
}

func encodeRecord(rec *record.Record, compress bool) ([]byte, error) {
	data, err := structpb.NewStruct(rec.Data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	dataBytes, err := proto.MarshalOptions{Deterministic: true}.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	var body []byte
	body = appendStrings(body, fieldTitles, rec.Titles)
	body = appendStrings(body, fieldUnprefixedTitles, rec.UnprefixedTitles)
	body = appendStrings(body, fieldLanguages, rec.Languages)
	body = protowire.AppendTag(body, fieldData, protowire.BytesType)
	body = protowire.AppendBytes(body, dataBytes)
	body = appendStrings(body, fieldAuthors, rec.Authors)
	body = appendStrings(body, fieldBase, []string{rec.Base})
	body = appendStrings(body, fieldSubpath, []string{rec.Subpath})
	body = appendStrings(body, fieldContentHash, []string{rec.ContentHash})
	body = protowire.AppendTag(body, fieldFormatVersion, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(int64(rec.FormatVersion)))

	var flags byte
	if compress {
		enc, _, err := zstdCodec()
		if err != nil {
			return nil, fmt.Errorf("init zstd: %w", err)
		}
		body = enc.EncodeAll(body, nil)
		flags |= flagZstd
	}

	out := make([]byte, 0, codecHeaderLen+len(body))
	out = append(out, codecMagic...)
	out = append(out, codecSchema, flags)
	return append(out, body...), nil
}

func appendStrings(b []byte, num protowire.Number, values []string) []byte {
	for _, v := range values {
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendString(b, v)
	}
	return b
}

func decodeRecord(raw []byte) (*record.Record, error) {
	if len(raw) < codecHeaderLen {
		return nil, errTruncated
	}
	if string(raw[:len(codecMagic)]) != codecMagic {
		return nil, errors.New("cache entry has unknown magic")
	}
	if schema := raw[len(codecMagic)]; schema != codecSchema {
		return nil, fmt.Errorf("cache entry schema %d, expected %d", schema, codecSchema)
	}
	flags := raw[len(codecMagic)+1]
	if flags&^flagZstd != 0 {
		return nil, fmt.Errorf("cache entry has unknown flags %#x", flags)
	}

	body := raw[codecHeaderLen:]
	if flags&flagZstd != 0 {
		_, dec, err := zstdCodec()
		if err != nil {
			return nil, fmt.Errorf("init zstd: %w", err)
		}
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress cache entry: %w", err)
		}
	}

	rec := &record.Record{
		Titles:           []string{},
		UnprefixedTitles: []string{},
		Languages:        []string{},
		Authors:          []string{},
	}
	seen := make(map[protowire.Number]bool, len(requiredFields))

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("read field tag: %w", protowire.ParseError(n))
		}
		body = body[n:]

		if num == fieldFormatVersion {
			if typ != protowire.VarintType {
				return nil, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
			}
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
			}
			body = body[n:]
			rec.FormatVersion = int(protowire.DecodeZigZag(v))
			seen[num] = true
			continue
		}

		if typ != protowire.BytesType {
			return nil, fmt.Errorf("field %d: unexpected wire type %d", num, typ)
		}
		value, n := protowire.ConsumeBytes(body)
		if n < 0 {
			return nil, fmt.Errorf("field %d: %w", num, protowire.ParseError(n))
		}
		body = body[n:]
		seen[num] = true

		switch num {
		case fieldTitles:
			rec.Titles = append(rec.Titles, string(value))
		case fieldUnprefixedTitles:
			rec.UnprefixedTitles = append(rec.UnprefixedTitles, string(value))
		case fieldLanguages:
			rec.Languages = append(rec.Languages, string(value))
		case fieldAuthors:
			rec.Authors = append(rec.Authors, string(value))
		case fieldData:
			var data structpb.Struct
			if err := proto.Unmarshal(value, &data); err != nil {
				return nil, fmt.Errorf("decode data: %w", err)
			}
			rec.Data = data.AsMap()
		case fieldBase:
			rec.Base = string(value)
		case fieldSubpath:
			rec.Subpath = string(value)
		case fieldContentHash:
			rec.ContentHash = string(value)
		default:
			return nil, fmt.Errorf("unknown field %d", num)
		}
	}

	for _, num := range requiredFields {
		if !seen[num] {
			return nil, fmt.Errorf("missing field %d", num)
		}
	}
	if len(rec.UnprefixedTitles) != len(rec.Titles) {
		return nil, fmt.Errorf("got %d unprefixed titles for %d titles", len(rec.UnprefixedTitles), len(rec.Titles))
	}
	return rec, nil
}
