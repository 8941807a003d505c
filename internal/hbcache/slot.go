package hbcache

import (
	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/symstore"
)

// Mode identifies which store a slot's on-disk index belongs to. A slot's
// mode is orthogonal to the record's own MODIFIED bit: two records at the
// same numeric index, one an AST node and one a symbol entry, never
// collide because find/get/new always key on (mode, index) together.
type Mode uint8

const (
	ModeUnused Mode = iota
	ModeAST
	ModeSym
)

func (m Mode) String() string {
	switch m {
	case ModeAST:
		return "AST"
	case ModeSym:
		return "SYM"
	default:
		return "UNUSED"
	}
}

// slot is one entry of the fixed pool. Every ring (free, LRU, hash bucket
// chain) threads through slots by index, never by pointer — the null
// pointer crash this cache's predecessor shipped came from a raw *slot
// sitting in a freed bucket; an index into a fixed array can't dangle.
type slot struct {
	mode     Mode
	index    uint32 // on-disk record index this slot mirrors
	modified bool
	onFree   bool // true while linked into the free ring
	inLRU    bool // true while linked into the LRU ring (mutually exclusive with onFree)

	ast aststore.Node
	sym symstore.Entry

	freeNext int // singly-linked: free ring is a LIFO stack, never needs a prev

	lruPrev int
	lruNext int

	hashNext int
}
