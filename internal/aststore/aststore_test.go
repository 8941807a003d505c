package aststore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
)

func TestAdd_GetRoundTrips(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "ast.ast", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := st.Add(Node{Type: TypeDeclaration, TokenIndex: 7, O1: 0, O2: 0})
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx)

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, TypeDeclaration, got.Type)
	require.Equal(t, uint32(7), got.TokenIndex)
}

func TestUpdate_MarksFree(t *testing.T) {
	t.Parallel()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "ast.ast", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := st.Add(Node{Type: TypeStatement})
	require.NoError(t, err)

	require.NoError(t, st.Update(idx, Node{Type: TypeFree}))

	got, err := st.Get(idx)
	require.NoError(t, err)
	require.Equal(t, TypeFree, got.Type)
}
