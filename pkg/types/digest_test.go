package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestOf(t *testing.T) {
	t.Run("equal content produces equal digests", func(t *testing.T) {
		a := DigestOf([]byte("int main() {}"))
		b := DigestOf([]byte("int main() {}"))
		assert.Equal(t, a, b)
	})

	t.Run("different content produces different digests", func(t *testing.T) {
		a := DigestOf([]byte("int main() {}"))
		b := DigestOf([]byte("int main() { return 1; }"))
		assert.NotEqual(t, a, b)
	})

	t.Run("zero value is distinguishable", func(t *testing.T) {
		var zero Digest
		assert.True(t, zero.IsZero())
		assert.False(t, DigestOf(nil).IsZero())
	})
}

func TestParseDigest(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		d := DigestOf([]byte("content"))
		parsed, err := ParseDigest(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	})

	t.Run("rejects short input", func(t *testing.T) {
		_, err := ParseDigest("abcd")
		assert.ErrorIs(t, err, ErrInvalidDigest)
	})

	t.Run("rejects non-hex input", func(t *testing.T) {
		_, err := ParseDigest("zz")
		assert.ErrorIs(t, err, ErrInvalidDigest)
	})
}
