package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/hbcache"
	"github.com/iamNilotpal/cc0/internal/symstore"
	"github.com/iamNilotpal/cc0/internal/tstore"
	"github.com/iamNilotpal/cc0/pkg/logger"
)

// fakeTokenSource replays a fixed token slice, ignoring SetCursor (the
// skeleton parser never rewinds).
type fakeTokenSource struct {
	toks []tstore.Token
	pos  int
}

func (f *fakeTokenSource) Next() (tstore.Token, error) {
	tok := f.toks[f.pos]
	f.pos++
	return tok, nil
}

func (f *fakeTokenSource) GetCursor() uint32    { return uint32(f.pos) }
func (f *fakeTokenSource) SetCursor(uint32) error { return nil }

func TestSkeletonParse_BuildsProgramAndEOFNodes(t *testing.T) {
	t.Parallel()

	ast, err := aststore.Open(context.Background(), &aststore.Config{
		DataDir: t.TempDir(), FileName: "ast.bin", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ast.Close() })

	sym, err := symstore.Open(context.Background(), &symstore.Config{
		DataDir: t.TempDir(), FileName: "sym.bin", Logger: logger.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sym.Close() })

	cache, err := hbcache.New(hbcache.Config{Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	src := &fakeTokenSource{toks: []tstore.Token{
		{Kind: 1, Line: 1},
		{Kind: 1, Line: 1},
		{Kind: tstore.KindEOF, Line: 2},
	}}

	progIdx, err := SkeletonParse(src, cache)
	require.NoError(t, err)
	require.NoError(t, cache.End())

	prog, err := ast.Get(progIdx)
	require.NoError(t, err)
	require.Equal(t, aststore.TypeProgram, prog.Type)

	eof, err := ast.Get(prog.O1)
	require.NoError(t, err)
	require.Equal(t, aststore.TypeEOF, eof.Type)
}
