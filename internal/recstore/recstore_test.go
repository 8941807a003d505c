package recstore

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
)

// uint32Codec is a minimal fixed-width codec used only to exercise
// recstore's mechanics in isolation from any real record shape.
type uint32Codec struct{}

func (uint32Codec) Size() int { return 4 }

func (uint32Codec) Encode(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func (uint32Codec) Decode(b []byte) (uint32, error) {
	return binary.LittleEndian.Uint32(b), nil
}

func openTestStore(t *testing.T) *Store[uint32] {
	t.Helper()

	st, err := Open(context.Background(), &Config[uint32]{
		DataDir: t.TempDir(), FileName: "records.bin", Logger: logger.Nop(), Codec: uint32Codec{},
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestAdd_ReturnsOneBasedIndex(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	idx, err := st.Add(42)
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx)

	idx2, err := st.Add(43)
	require.NoError(t, err)
	require.Equal(t, uint32(2), idx2)
}

func TestGet_RoundTrips(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	idx, err := st.Add(1234)
	require.NoError(t, err)

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, uint32(1234), got)
}

func TestUpdate_OverwritesInPlace(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	idx, err := st.Add(1)
	require.NoError(t, err)
	require.NoError(t, st.Update(idx, 999))

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, uint32(999), got)
	require.Equal(t, uint32(1), st.Count(), "Update must not change the record count")
}

func TestGet_RejectsIndexZero(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	_, err := st.Get(0)
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestGet_RejectsOutOfRangeIndex(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	_, err := st.Add(1)
	require.NoError(t, err)

	_, err = st.Get(5)
	require.ErrorIs(t, err, ErrInvalidIndex)
}

func TestOpen_RecoversCountFromExistingFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	st, err := Open(context.Background(), &Config[uint32]{
		DataDir: dir, FileName: "records.bin", Logger: logger.Nop(), Codec: uint32Codec{},
	})
	require.NoError(t, err)

	_, err = st.Add(1)
	require.NoError(t, err)
	_, err = st.Add(2)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := Open(context.Background(), &Config[uint32]{
		DataDir: dir, FileName: "records.bin", Logger: logger.Nop(), Codec: uint32Codec{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	require.Equal(t, uint32(2), reopened.Count())
}
