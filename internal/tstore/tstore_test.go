package tstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/pkg/logger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := Open(context.Background(), &Config{
		DataDir: t.TempDir(), FileName: "tokens.tst", Logger: logger.Nop(),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestAppendAndNext_SequentialRead(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	toks := []Token{
		{Kind: 10, Line: 1, LexemeOffset: 5},
		{Kind: 11, Line: 1, LexemeOffset: 9},
		{Kind: KindEOF, Line: 2},
	}
	for _, tok := range toks {
		_, err := st.Append(tok)
		require.NoError(t, err)
	}

	require.NoError(t, st.SetCursor(1))
	for _, want := range toks {
		got, err := st.Next()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestSetCursor_GetCursor(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	_, err := st.Append(Token{Kind: 1, Line: 1})
	require.NoError(t, err)
	_, err = st.Append(Token{Kind: 2, Line: 2})
	require.NoError(t, err)

	require.NoError(t, st.SetCursor(2))
	require.Equal(t, uint32(2), st.GetCursor())

	tok, err := st.Next()
	require.NoError(t, err)
	require.Equal(t, Kind(2), tok.Kind)
	require.Equal(t, uint32(3), st.GetCursor())
}

func TestLastRecordIsEOF(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)

	_, err := st.Append(Token{Kind: 1, Line: 1})
	require.NoError(t, err)
	_, err = st.Append(Token{Kind: KindEOF, Line: 1})
	require.NoError(t, err)

	require.NoError(t, st.SetCursor(st.Count()))
	last, err := st.Next()
	require.NoError(t, err)
	require.Equal(t, KindEOF, last.Kind)
}
