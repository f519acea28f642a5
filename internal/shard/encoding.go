package shard

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/dshills/cindex-mcp/pkg/types"
)

// Shard file layout, all integers big-endian:
//
//	magic    uint32  "CIDX"
//	version  uint32
//	digest   [32]byte  content digest the shard was derived from
//	checksum uint32    CRC32 (IEEE) of the payload
//	length   uint64    payload length
//	payload  []byte    zstd-compressed JSON body
const (
	magicNumber    = 0x43494458 // "CIDX"
	formatVersion  = 1
	headerSize     = 4 + 4 + 32 + 4 + 8
	maxPayloadSize = 1 << 30 // Refuse absurd lengths from corrupt headers
)

var (
	errBadMagic    = fmt.Errorf("%w: bad magic number", ErrStale)
	errBadVersion  = fmt.Errorf("%w: unsupported format version", ErrStale)
	errBadChecksum = fmt.Errorf("%w: checksum mismatch", ErrStale)
	errTruncated   = fmt.Errorf("%w: truncated shard", ErrStale)
)

// zstd is concurrency-safe for EncodeAll/DecodeAll with a nil source.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// body is the serialized form of a shard's slabs and dependency digests.
type body struct {
	Symbols []types.Symbol    `json:"symbols"`
	Refs    []types.Ref       `json:"refs"`
	Deps    map[string]string `json:"deps,omitempty"`
}

// encode serializes a shard into its on-disk representation.
func encode(s *Shard) ([]byte, error) {
	var deps map[string]string
	if len(s.Deps) > 0 {
		deps = make(map[string]string, len(s.Deps))
		for path, d := range s.Deps {
			deps[path] = d.String()
		}
	}
	raw, err := json.Marshal(body{
		Symbols: s.Symbols.Symbols(),
		Refs:    s.Refs.Refs(),
		Deps:    deps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode shard body: %w", err)
	}
	payload := zstdEncoder.EncodeAll(raw, nil)

	buf := make([]byte, headerSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], magicNumber)
	binary.BigEndian.PutUint32(buf[4:8], formatVersion)
	copy(buf[8:40], s.Digest[:])
	binary.BigEndian.PutUint32(buf[40:44], crc32.ChecksumIEEE(payload))
	binary.BigEndian.PutUint64(buf[44:52], uint64(len(payload)))
	copy(buf[headerSize:], payload)
	return buf, nil
}

// decode deserializes a shard, verifying the embedded checksum. Corruption
// surfaces as ErrStale so callers treat it as a cache miss.
func decode(data []byte) (*Shard, error) {
	if len(data) < headerSize {
		return nil, errTruncated
	}
	if binary.BigEndian.Uint32(data[0:4]) != magicNumber {
		return nil, errBadMagic
	}
	if binary.BigEndian.Uint32(data[4:8]) != formatVersion {
		return nil, errBadVersion
	}

	var digest types.Digest
	copy(digest[:], data[8:40])
	checksum := binary.BigEndian.Uint32(data[40:44])
	length := binary.BigEndian.Uint64(data[44:52])
	if length > maxPayloadSize || uint64(len(data)-headerSize) != length {
		return nil, errTruncated
	}

	payload := data[headerSize:]
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, errBadChecksum
	}

	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStale, err)
	}
	var b body
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStale, err)
	}

	var sb types.SymbolSlabBuilder
	for _, sym := range b.Symbols {
		sb.Add(sym)
	}
	var rb types.RefSlabBuilder
	for _, ref := range b.Refs {
		rb.Add(ref)
	}
	var deps map[string]types.Digest
	if len(b.Deps) > 0 {
		deps = make(map[string]types.Digest, len(b.Deps))
		for path, s := range b.Deps {
			d, err := types.ParseDigest(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrStale, err)
			}
			deps[path] = d
		}
	}
	return &Shard{Symbols: sb.Build(), Refs: rb.Build(), Digest: digest, Deps: deps}, nil
}
