package hashfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum_Deterministic(t *testing.T) {
	t.Parallel()

	data := []byte("cc0-hash-test")
	first := Sum(data)
	second := Sum(data)

	require.Equal(t, first, second, "Sum must be deterministic for identical input")
}

func TestSum_DifferentInputsDiffer(t *testing.T) {
	t.Parallel()

	a := Sum([]byte("alpha"))
	b := Sum([]byte("beta"))

	assert.NotEqual(t, a, b, "distinct inputs should hash to different values (collisions aside)")
}

func TestSum_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, offsetBasis32, Sum(nil), "hash of empty input should be the FNV offset basis")
}

func TestBucket_WithinRange(t *testing.T) {
	t.Parallel()

	const n = 128

	for _, s := range []string{"a", "ab", "symbol_table", "0123456789"} {
		h := Sum([]byte(s))
		b := Bucket(h, n)

		require.GreaterOrEqual(t, b, 0, "bucket must be non-negative")
		require.Less(t, b, n, "bucket must be within [0, n)")
	}
}

func TestBucket_ZeroBuckets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Bucket(Sum([]byte("anything")), 0))
}
