package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Digest is a fixed-size content hash (SHA-256). Two digests are equal iff
// the hashed content is byte-identical. It is the unit of change detection
// for incremental indexing and the integrity check for persisted shards.
type Digest [sha256.Size]byte

// ErrInvalidDigest is returned when parsing a malformed digest string.
var ErrInvalidDigest = errors.New("invalid digest")

// DigestOf computes the digest of the given content.
func DigestOf(content []byte) Digest {
	return sha256.Sum256(content)
}

// String returns the lowercase hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is the zero value, which is never a
// valid content hash in practice and is used as "no digest recorded".
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes a digest from its hex encoding.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != sha256.Size {
		return Digest{}, ErrInvalidDigest
	}
	copy(d[:], b)
	return d, nil
}
