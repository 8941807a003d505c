package tacvm

// heapBlock is a free-list entry: a contiguous, currently-unused byte
// range available for reuse by a future alloc.
type heapBlock struct {
	addr uint32
	size uint32
}

// heap is the engine's bump/free-list allocator over a fixed []byte
// arena. Address 0 is reserved — it is never returned by alloc and never
// a valid key in live — so a zero Value.Ptr reads naturally as "no
// allocation" throughout the engine.
//
// Freed blocks are never coalesced with their neighbors; a workload that
// alternates alloc/free of varying sizes will fragment the free list
// rather than reclaiming contiguous space. Acceptable for the small
// heaps this engine targets (tens of KB); documented as a known
// limitation rather than solved, since the spec does not call out
// fragmentation behavior as normative.
type heap struct {
	arena []byte
	bump  uint32
	free  []heapBlock
	live  map[uint32]uint32 // addr -> size
}

func newHeap(size int) *heap {
	return &heap{arena: make([]byte, size), bump: 1, live: make(map[uint32]uint32)}
}

// alloc reserves size bytes and returns their start address, or 0 if the
// request cannot be satisfied (including size == 0, which is never a
// valid allocation).
func (h *heap) alloc(size uint32) uint32 {
	if size == 0 {
		return 0
	}

	for i, b := range h.free {
		if b.size < size {
			continue
		}
		addr := b.addr
		if b.size == size {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = heapBlock{addr: b.addr + size, size: b.size - size}
		}
		h.live[addr] = size
		return addr
	}

	if uint64(h.bump)+uint64(size) > uint64(len(h.arena)) {
		return 0
	}
	addr := h.bump
	h.bump += size
	h.live[addr] = size
	return addr
}

// free releases a prior allocation. Reports false if addr does not name
// a live allocation's start address.
func (h *heap) free(addr uint32) bool {
	size, ok := h.live[addr]
	if !ok {
		return false
	}
	delete(h.live, addr)
	h.free = append(h.free, heapBlock{addr: addr, size: size})
	return true
}

// contains reports whether [addr, addr+n) lies entirely within one live
// allocation.
func (h *heap) contains(addr, n uint32) bool {
	if n == 0 {
		return false
	}
	for base, size := range h.live {
		if addr >= base && uint64(addr)+uint64(n) <= uint64(base)+uint64(size) {
			return true
		}
	}
	return false
}

func (h *heap) read(addr uint32, buf []byte) bool {
	n := uint32(len(buf))
	if !h.contains(addr, n) {
		return false
	}
	copy(buf, h.arena[addr:addr+n])
	return true
}

func (h *heap) write(addr uint32, data []byte) bool {
	n := uint32(len(data))
	if !h.contains(addr, n) {
		return false
	}
	copy(h.arena[addr:addr+n], data)
	return true
}

func (h *heap) reset() {
	h.bump = 1
	h.free = h.free[:0]
	for k := range h.live {
		delete(h.live, k)
	}
}
