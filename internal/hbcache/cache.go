// Package hbcache is the write-back LRU buffer cache that fronts the AST
// and symbol stores. A fixed pool of slots is threaded into two rings
// (free and LRU) plus a hash table keyed by (mode, on-disk index), all
// linked by slice index rather than pointer so a reused or evicted slot
// can never leave a dangling reference behind.
//
// The cache is not a package-global singleton: every pipeline instance
// constructs its own *Cache over its own *aststore.Store/*symstore.Store
// pair via New, and tears it down with End, which writes back every slot
// still carrying the MODIFIED bit.
package hbcache

import (
	"sync"

	"github.com/iamNilotpal/cc0/internal/aststore"
	"github.com/iamNilotpal/cc0/internal/hashfn"
	"github.com/iamNilotpal/cc0/internal/symstore"
	"github.com/iamNilotpal/cc0/pkg/errors"
	"go.uber.org/zap"
)

// sentinel marks "no link" in every ring. It is negative, so a stray
// comparison against a real slot index can never accidentally succeed.
const sentinel = -1

// defaultSlots and defaultBuckets size the pool when Config leaves them
// at zero. Buckets must stay a power of two; hashfn.Bucket masks rather
// than mods.
const (
	defaultSlots   = 64
	defaultBuckets = 128
)

// Config carries the parameters needed to construct a Cache.
type Config struct {
	// Slots is the total number of buffer slots in the pool, shared
	// between AST and symbol records. Zero uses defaultSlots.
	Slots int
	// Buckets is the hash table width. Zero uses defaultBuckets; must be
	// a power of two.
	Buckets int
	Logger  *zap.SugaredLogger
}

// Handle is a short-lived reference to a slot returned by Find/Get/New.
// It is valid only until the next call on the same Cache that touches or
// deletes a slot: Get, New, Set, Touch and Delete all end the validity of
// every outstanding handle, including the one they were given. Calling
// Set/Touch/Delete with a stale handle returns a CacheError with
// ErrorCodeCacheInvalidMode rather than silently touching the wrong record.
type Handle struct {
	slot  int
	epoch uint64
}

// Cache is the fixed-pool write-back buffer cache over an AST store and a
// symbol store.
type Cache struct {
	mu  sync.Mutex
	log *zap.SugaredLogger

	ast *aststore.Store
	sym *symstore.Store

	slots   []slot
	buckets []int

	freeHead int
	lruHead  int // least-recently-used end; next eviction victim
	lruTail  int // most-recently-used end

	epoch uint64
}

// New builds a Cache over the given stores. It links every slot into the
// free ring and clears the hash table — the "init" operation of the
// cache's contract.
func New(cfg Config, ast *aststore.Store, sym *symstore.Store) (*Cache, error) {
	if ast == nil || sym == nil {
		return nil, errors.NewCacheError(
			nil, errors.ErrorCodeInvalidInput, "hbcache requires both an AST store and a symbol store",
		)
	}

	n := cfg.Slots
	if n <= 0 {
		n = defaultSlots
	}
	h := cfg.Buckets
	if h <= 0 {
		h = defaultBuckets
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c := &Cache{
		log:      log,
		ast:      ast,
		sym:      sym,
		slots:    make([]slot, n),
		buckets:  make([]int, h),
		lruHead:  sentinel,
		lruTail:  sentinel,
		freeHead: sentinel,
	}
	c.init()
	return c, nil
}

func (c *Cache) init() {
	for i := range c.buckets {
		c.buckets[i] = sentinel
	}
	for i := range c.slots {
		c.slots[i] = slot{lruPrev: sentinel, lruNext: sentinel, hashNext: sentinel, onFree: true}
	}
	for i := 0; i < len(c.slots)-1; i++ {
		c.slots[i].freeNext = i + 1
	}
	if len(c.slots) > 0 {
		c.slots[len(c.slots)-1].freeNext = sentinel
		c.freeHead = 0
	} else {
		c.freeHead = sentinel
	}
}

func (c *Cache) bucketOf(index uint32) int {
	return hashfn.Bucket(index, len(c.buckets))
}

// findLocked walks the hash chain for (mode, idx) and returns the slot
// index, or sentinel if absent. Does not touch either ring.
func (c *Cache) findLocked(idx uint32, mode Mode) int {
	b := c.bucketOf(idx)
	for s := c.buckets[b]; s != sentinel; s = c.slots[s].hashNext {
		if c.slots[s].mode == mode && c.slots[s].index == idx {
			return s
		}
	}
	return sentinel
}

func (c *Cache) insertHash(s int) {
	b := c.bucketOf(c.slots[s].index)
	c.slots[s].hashNext = c.buckets[b]
	c.buckets[b] = s
}

func (c *Cache) removeHash(s int) {
	b := c.bucketOf(c.slots[s].index)
	cur := c.buckets[b]
	if cur == s {
		c.buckets[b] = c.slots[s].hashNext
		c.slots[s].hashNext = sentinel
		return
	}
	for cur != sentinel {
		next := c.slots[cur].hashNext
		if next == s {
			c.slots[cur].hashNext = c.slots[s].hashNext
			c.slots[s].hashNext = sentinel
			return
		}
		cur = next
	}
}

// popFreeSlot removes and returns a free-ring slot already tagged with
// mode if one exists, else any free slot, else sentinel if the ring is
// empty.
func (c *Cache) popFreeSlot(mode Mode) int {
	prev := sentinel
	for cur := c.freeHead; cur != sentinel; cur = c.slots[cur].freeNext {
		if c.slots[cur].mode == mode {
			c.unlinkFree(prev, cur)
			return cur
		}
		prev = cur
	}
	if c.freeHead == sentinel {
		return sentinel
	}
	head := c.freeHead
	c.unlinkFree(sentinel, head)
	return head
}

func (c *Cache) unlinkFree(prev, s int) {
	if prev == sentinel {
		c.freeHead = c.slots[s].freeNext
	} else {
		c.slots[prev].freeNext = c.slots[s].freeNext
	}
	c.slots[s].freeNext = sentinel
	c.slots[s].onFree = false
}

func (c *Cache) unlinkLRU(s int) {
	p, n := c.slots[s].lruPrev, c.slots[s].lruNext
	if p != sentinel {
		c.slots[p].lruNext = n
	} else {
		c.lruHead = n
	}
	if n != sentinel {
		c.slots[n].lruPrev = p
	} else {
		c.lruTail = p
	}
	c.slots[s].lruPrev, c.slots[s].lruNext = sentinel, sentinel
	c.slots[s].inLRU = false
}

func (c *Cache) appendLRUTail(s int) {
	c.slots[s].lruPrev = c.lruTail
	c.slots[s].lruNext = sentinel
	if c.lruTail != sentinel {
		c.slots[c.lruTail].lruNext = s
	} else {
		c.lruHead = s
	}
	c.lruTail = s
}

// touch marks slot s most-recently-used and sets MODIFIED — any touch is
// treated as a prospective write, per the cache's contract. A slot
// arrives here in one of four states: on the free ring (a deleted slot
// reached again through a handle), in neither ring (its first touch after
// allocateSlot/popFreeSlot unlinked it), in the LRU ring but not yet MRU,
// or already MRU.
func (c *Cache) touch(s int) {
	switch {
	case c.slots[s].onFree:
		c.unlinkFree(c.freePrevOf(s), s)
		c.appendLRUTail(s)
		c.slots[s].inLRU = true
	case !c.slots[s].inLRU:
		c.appendLRUTail(s)
		c.slots[s].inLRU = true
	case s != c.lruTail:
		c.unlinkLRU(s)
		c.appendLRUTail(s)
	}
	c.slots[s].modified = true
	c.epoch++
}

// freePrevOf finds the predecessor of s in the free ring. Needed because
// the free ring is a singly-linked stack: unlinking a slot that isn't the
// current head requires its predecessor.
func (c *Cache) freePrevOf(s int) int {
	if c.freeHead == s {
		return sentinel
	}
	for cur := c.freeHead; cur != sentinel; cur = c.slots[cur].freeNext {
		if c.slots[cur].freeNext == s {
			return cur
		}
	}
	return sentinel
}

// writeback flushes a slot's in-core record if MODIFIED is set.
func (c *Cache) writeback(s int) error {
	if !c.slots[s].modified {
		return nil
	}
	var err error
	switch c.slots[s].mode {
	case ModeAST:
		err = c.ast.Update(c.slots[s].index, c.slots[s].ast)
	case ModeSym:
		err = c.sym.Update(c.slots[s].index, c.slots[s].sym)
	}
	if err != nil {
		return errors.NewCacheError(err, errors.ErrorCodeIO, "writing back dirty slot").
			WithSlot(s).WithMode(c.slots[s].mode.String()).WithIndex(c.slots[s].index)
	}
	c.slots[s].modified = false
	return nil
}

// allocateSlot returns a slot ready to take on a new (mode, index)
// identity: a free slot if one is available, else the LRU victim after
// writing it back and removing it from the hash table under its old
// identity.
func (c *Cache) allocateSlot(mode Mode) (int, error) {
	if s := c.popFreeSlot(mode); s != sentinel {
		c.removeHash(s)
		return s, nil
	}

	victim := c.lruHead
	if victim == sentinel {
		return sentinel, errors.NewCacheError(
			nil, errors.ErrorCodeCacheFull, "no free or evictable slot available",
		)
	}
	if err := c.writeback(victim); err != nil {
		return sentinel, err
	}
	c.unlinkLRU(victim)
	c.removeHash(victim)
	return victim, nil
}

func (c *Cache) validate(h Handle) error {
	if h.slot < 0 || h.slot >= len(c.slots) || h.epoch != c.epoch {
		return errors.NewCacheError(
			nil, errors.ErrorCodeCacheInvalidMode, "stale or out-of-range cache handle",
		).WithSlot(h.slot)
	}
	return nil
}

// FindAST reports whether an AST node at idx is already resident, without
// affecting LRU order.
func (c *Cache) FindAST(idx uint32) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.findLocked(idx, ModeAST)
	if s == sentinel {
		return Handle{}, false
	}
	return Handle{slot: s, epoch: c.epoch}, true
}

// FindSym reports whether a symbol entry at idx is already resident,
// without affecting LRU order.
func (c *Cache) FindSym(idx uint32) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.findLocked(idx, ModeSym)
	if s == sentinel {
		return Handle{}, false
	}
	return Handle{slot: s, epoch: c.epoch}, true
}

// GetAST returns the slot for an existing AST node at idx, loading it
// from disk on a miss, and marks it most-recently-used.
func (c *Cache) GetAST(idx uint32) (Handle, aststore.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.findLocked(idx, ModeAST); s != sentinel {
		c.touch(s)
		return Handle{slot: s, epoch: c.epoch}, c.slots[s].ast, nil
	}

	s, err := c.allocateSlot(ModeAST)
	if err != nil {
		return Handle{}, aststore.Node{}, err
	}
	node, err := c.ast.Get(idx)
	if err != nil {
		c.pushFree(s)
		return Handle{}, aststore.Node{}, errors.NewCacheError(err, errors.ErrorCodeIO, "loading AST node").
			WithSlot(s).WithIndex(idx)
	}

	c.slots[s].mode = ModeAST
	c.slots[s].index = idx
	c.slots[s].ast = node
	c.slots[s].modified = false
	c.insertHash(s)
	c.touch(s)
	return Handle{slot: s, epoch: c.epoch}, node, nil
}

// GetSym returns the slot for an existing symbol entry at idx, loading it
// from disk on a miss, and marks it most-recently-used.
func (c *Cache) GetSym(idx uint32) (Handle, symstore.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s := c.findLocked(idx, ModeSym); s != sentinel {
		c.touch(s)
		return Handle{slot: s, epoch: c.epoch}, c.slots[s].sym, nil
	}

	s, err := c.allocateSlot(ModeSym)
	if err != nil {
		return Handle{}, symstore.Entry{}, err
	}
	entry, err := c.sym.Get(idx)
	if err != nil {
		c.pushFree(s)
		return Handle{}, symstore.Entry{}, errors.NewCacheError(err, errors.ErrorCodeIO, "loading symbol entry").
			WithSlot(s).WithIndex(idx)
	}

	c.slots[s].mode = ModeSym
	c.slots[s].index = idx
	c.slots[s].sym = entry
	c.slots[s].modified = false
	c.insertHash(s)
	c.touch(s)
	return Handle{slot: s, epoch: c.epoch}, entry, nil
}

// NewAST allocates a fresh AST node: a new on-disk record via the
// underlying store's Add, backed by a slot that is immediately MODIFIED
// and most-recently-used.
func (c *Cache) NewAST() (Handle, uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.allocateSlot(ModeAST)
	if err != nil {
		return Handle{}, 0, err
	}
	idx, err := c.ast.Add(aststore.Node{})
	if err != nil {
		c.pushFree(s)
		return Handle{}, 0, errors.NewCacheError(err, errors.ErrorCodeIO, "allocating AST record").WithSlot(s)
	}

	c.slots[s].mode = ModeAST
	c.slots[s].index = idx
	c.slots[s].ast = aststore.Node{}
	c.insertHash(s)
	c.touch(s)
	return Handle{slot: s, epoch: c.epoch}, idx, nil
}

// NewSym allocates a fresh symbol entry, same contract as NewAST.
func (c *Cache) NewSym() (Handle, uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.allocateSlot(ModeSym)
	if err != nil {
		return Handle{}, 0, err
	}
	idx, err := c.sym.Add(symstore.Entry{})
	if err != nil {
		c.pushFree(s)
		return Handle{}, 0, errors.NewCacheError(err, errors.ErrorCodeIO, "allocating symbol record").WithSlot(s)
	}

	c.slots[s].mode = ModeSym
	c.slots[s].index = idx
	c.slots[s].sym = symstore.Entry{}
	c.insertHash(s)
	c.touch(s)
	return Handle{slot: s, epoch: c.epoch}, idx, nil
}

// SetAST overwrites the in-core copy of an AST-mode slot and marks it
// MODIFIED/MRU. Returns an error if h is stale or does not name an
// AST-mode slot.
func (c *Cache) SetAST(h Handle, node aststore.Node) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validate(h); err != nil {
		return err
	}
	if c.slots[h.slot].mode != ModeAST {
		return errors.NewCacheError(nil, errors.ErrorCodeCacheInvalidMode, "handle does not name an AST slot").
			WithSlot(h.slot)
	}
	c.slots[h.slot].ast = node
	c.touch(h.slot)
	return nil
}

// SetSym overwrites the in-core copy of a symbol-mode slot and marks it
// MODIFIED/MRU.
func (c *Cache) SetSym(h Handle, entry symstore.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validate(h); err != nil {
		return err
	}
	if c.slots[h.slot].mode != ModeSym {
		return errors.NewCacheError(nil, errors.ErrorCodeCacheInvalidMode, "handle does not name a symbol slot").
			WithSlot(h.slot)
	}
	c.slots[h.slot].sym = entry
	c.touch(h.slot)
	return nil
}

// Touch re-marks a slot MRU/MODIFIED without changing its content, for
// callers that mutated a record obtained by value and want to signal a
// pending write without a redundant Set.
func (c *Cache) Touch(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validate(h); err != nil {
		return err
	}
	c.touch(h.slot)
	return nil
}

// pushFree returns slot s to the head of the free ring, clearing its
// MODIFIED bit. Used both by Delete and by the Get/New error paths that
// must give back an allocated-but-unused slot.
func (c *Cache) pushFree(s int) {
	c.slots[s].modified = false
	c.slots[s].freeNext = c.freeHead
	c.slots[s].onFree = true
	c.slots[s].inLRU = false
	c.freeHead = s
}

// Delete marks the underlying record free, clears MODIFIED, and returns
// the slot to the free ring. Per the cache's contract the slot stays in
// the hash table under its old identity until the next Get/New reuses
// it — a subsequent Find for the deleted index may still report a hit.
func (c *Cache) Delete(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validate(h); err != nil {
		return err
	}

	s := h.slot
	var err error
	switch c.slots[s].mode {
	case ModeAST:
		err = c.ast.Update(c.slots[s].index, aststore.Node{Type: aststore.TypeFree})
	case ModeSym:
		err = c.sym.Update(c.slots[s].index, symstore.Entry{})
	}
	if err != nil {
		return errors.NewCacheError(err, errors.ErrorCodeIO, "marking record free").
			WithSlot(s).WithMode(c.slots[s].mode.String()).WithIndex(c.slots[s].index)
	}

	if c.slots[s].inLRU {
		c.unlinkLRU(s)
	}
	c.pushFree(s)
	c.epoch++
	return nil
}

// End writes back every slot still carrying the MODIFIED bit, regardless
// of which ring it currently occupies. Call once at pipeline shutdown.
func (c *Cache) End() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for s := range c.slots {
		if err := c.writeback(s); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
