package symstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
)

func TestAdd_GetRoundTrips(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "symbols.sym", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := st.Add(Entry{Name: 10, Kind: 1, TypeRef: 2, Scope: 0, Value: -5})
	require.NoError(t, err)

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, int32(-5), got.Value)
	require.Equal(t, uint16(10), got.Name)
}

func TestUpdate_PreservesNegativeValue(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "symbols.sym", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := st.Add(Entry{Value: 1})
	require.NoError(t, err)
	require.NoError(t, st.Update(idx, Entry{Value: -1}))

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, int32(-1), got.Value)
}
