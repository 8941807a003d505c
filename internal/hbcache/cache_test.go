package hbcache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/symstore"
	"github.com/iamNilotpal/cc0/pkg/logger"
)

func openTestStores(t *testing.T) (*aststore.Store, *symstore.Store) {
	t.Helper()

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

	return ast, sym
}

func TestNewAST_GetAST_RoundTrips(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h, idx, err := c.NewAST()
	require.NoError(t, err)

	node := aststore.Node{Type: aststore.TypeExpression, TokenIndex: 7}
	require.NoError(t, c.SetAST(h, node))

	h2, got, err := c.GetAST(idx)
	require.NoError(t, err)
	require.Equal(t, node, got)
	require.NotZero(t, h2)
}

func TestFindAST_MissWithoutLoad(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	_, ok := c.FindAST(1)
	require.False(t, ok)
}

func TestGetAST_LoadsFromUnderlyingStoreOnMiss(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	idx, err := ast.Add(aststore.Node{Type: aststore.TypeStatement, O1: 42})
	require.NoError(t, err)

	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	_, got, err := c.GetAST(idx)
	require.NoError(t, err)
	require.Equal(t, uint32(42), got.O1)
}

func TestEviction_WritesBackDirtySlotBeforeReuse(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 2, Buckets: 4, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h1, idx1, err := c.NewAST()
	require.NoError(t, err)
	require.NoError(t, c.SetAST(h1, aststore.Node{TokenIndex: 1}))

	_, idx2, err := c.NewAST()
	require.NoError(t, err)

	// Pool has only 2 slots; a third allocation must evict idx1's slot,
	// writing it back first.
	_, idx3, err := c.NewAST()
	require.NoError(t, err)
	require.NotEqual(t, idx2, idx3)

	got, err := ast.Get(idx1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), got.TokenIndex)
}

func TestEviction_SecondEvictionStillFindsLRUVictim(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 2, Buckets: 4, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h1, idx1, err := c.NewAST()
	require.NoError(t, err)
	require.NoError(t, c.SetAST(h1, aststore.Node{TokenIndex: 1}))

	h2, idx2, err := c.NewAST()
	require.NoError(t, err)
	require.NoError(t, c.SetAST(h2, aststore.Node{TokenIndex: 2}))

	// Evicts idx1's slot (the LRU head).
	_, idx3, err := c.NewAST()
	require.NoError(t, err)

	// A fourth allocation must evict idx2's slot in turn. Before the
	// inLRU reset fix, the first eviction orphaned every other resident
	// slot from the ring, and this call would fail with "no free or
	// evictable slot available" even though idx2's slot is the true LRU.
	_, idx4, err := c.NewAST()
	require.NoError(t, err)
	require.NotEqual(t, idx3, idx4)

	got, err := ast.Get(idx2)
	require.NoError(t, err)
	require.Equal(t, uint32(2), got.TokenIndex)
}

func TestDelete_ReturnsSlotToFreeRingAndMarksRecordFree(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h, idx, err := c.NewAST()
	require.NoError(t, err)
	require.NoError(t, c.Delete(h))

	got, err := ast.Get(idx)
	require.NoError(t, err)
	require.Equal(t, aststore.TypeFree, got.Type)
}

func TestStaleHandle_RejectedAfterNextCacheOp(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h1, _, err := c.NewAST()
	require.NoError(t, err)

	_, _, err = c.NewAST()
	require.NoError(t, err)

	err = c.SetAST(h1, aststore.Node{})
	require.Error(t, err)
}

func TestEnd_FlushesAllDirtySlots(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h, idx, err := c.NewAST()
	require.NoError(t, err)
	require.NoError(t, c.SetAST(h, aststore.Node{O2: 99}))
	require.NoError(t, c.End())

	got, err := ast.Get(idx)
	require.NoError(t, err)
	require.Equal(t, uint32(99), got.O2)
}

func TestSymStore_NewGetDeleteCycle(t *testing.T) {
	t.Parallel()

	ast, sym := openTestStores(t)
	c, err := New(Config{Slots: 4, Buckets: 8, Logger: logger.Nop()}, ast, sym)
	require.NoError(t, err)

	h, idx, err := c.NewSym()
	require.NoError(t, err)
	require.NoError(t, c.SetSym(h, symstore.Entry{Name: 3, Value: -7}))

	_, got, err := c.GetSym(idx)
	require.NoError(t, err)
	require.Equal(t, int32(-7), got.Value)

	h2, ok := c.FindSym(idx)
	require.True(t, ok)
	require.NoError(t, c.Delete(h2))
}
