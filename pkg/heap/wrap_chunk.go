package heap

// Chunk layout (38 bytes total):
//
//	offset 0        kind byte (MonoChunkS8)
//	offset 1        length byte: number of occupied slots, 0..ChunkSlots
//	offset 2..34    ChunkSlots * 4-byte addresses
//	offset 34..38   next: 4-byte address of the following chunk, or 0
const (
	chunkLengthOff = 1
	chunkSlotsOff  = 2
	chunkSlotSize  = 4
	chunkNextOff   = chunkSlotsOff + ChunkSlots*chunkSlotSize // 34
)

// ChunkWrapper is a live view over a CHUNK_S8 mono: a fixed-capacity
// slice of ChunkSlots addresses plus a link to the next chunk in a
// ArrayWrapper's chain.
type ChunkWrapper struct {
	alloc *Allocator
	mono  *Mono
}

func newChunkWrapper(a *Allocator, m *Mono) *ChunkWrapper {
	return &ChunkWrapper{alloc: a, mono: m}
}

// Address returns the heap address of the chunk's header byte.
func (c *ChunkWrapper) Address() Address { return c.mono.Address() }

func (c *ChunkWrapper) region() *Region { return c.mono.region }

func (c *ChunkWrapper) localOffset(rel offset) offset { return c.mono.beginOffset + rel }

// Length returns the number of occupied slots.
func (c *ChunkWrapper) Length() (uint8, *Fault) {
	return c.region().ReadU8(c.localOffset(chunkLengthOff))
}

func (c *ChunkWrapper) writeLength(n uint8) *Fault {
	return c.region().WriteU8(c.localOffset(chunkLengthOff), n)
}

// IsFull reports whether the chunk holds ChunkSlots entries.
func (c *ChunkWrapper) IsFull() (bool, *Fault) {
	n, f := c.Length()
	if f != nil {
		return false, f
	}
	return n >= ChunkSlots, nil
}

// Index reads the address stored at slot i. i must be < the chunk's
// current length.
func (c *ChunkWrapper) Index(i uint8) (Address, *Fault) {
	n, f := c.Length()
	if f != nil {
		return 0, f
	}
	if i >= n {
		return 0, newFault(OutOfRange, "chunk index %d out of range [0, %d)", i, n)
	}
	return c.region().ReadAddress(c.localOffset(chunkSlotsOff + offset(i)*chunkSlotSize))
}

// SetIndex overwrites the address already stored at slot i.
func (c *ChunkWrapper) SetIndex(i uint8, addr Address) *Fault {
	n, f := c.Length()
	if f != nil {
		return f
	}
	if i >= n {
		return newFault(OutOfRange, "chunk index %d out of range [0, %d)", i, n)
	}
	return c.region().WriteAddress(c.localOffset(chunkSlotsOff+offset(i)*chunkSlotSize), addr)
}

// Append writes addr into the next free slot. Fails with ChunkFull if
// the chunk is already at capacity.
func (c *ChunkWrapper) Append(addr Address) *Fault {
	n, f := c.Length()
	if f != nil {
		return f
	}
	if n >= ChunkSlots {
		return newFault(ChunkFull, "chunk at %d already holds %d entries", c.Address(), ChunkSlots)
	}
	if f := c.region().WriteAddress(c.localOffset(chunkSlotsOff+offset(n)*chunkSlotSize), addr); f != nil {
		return f
	}
	return c.writeLength(n + 1)
}

// FetchNext returns the wrapper for the linked next chunk, or nil if
// this is the tail (next == NullAddress).
func (c *ChunkWrapper) FetchNext() (*ChunkWrapper, *Fault) {
	next, f := c.region().ReadAddress(c.localOffset(chunkNextOff))
	if f != nil {
		return nil, f
	}
	if next == NullAddress {
		return nil, nil
	}
	m, f := c.alloc.heap.FetchMono(next)
	if f != nil {
		return nil, f
	}
	if m.Kind() != MonoChunkS8 {
		return nil, newFault(WrongKind, "next pointer at %d does not reference a chunk", next)
	}
	return newChunkWrapper(c.alloc, m), nil
}

// WriteNext links this chunk to the chunk at addr (or clears the link
// if addr is NullAddress).
func (c *ChunkWrapper) WriteNext(addr Address) *Fault {
	return c.region().WriteAddress(c.localOffset(chunkNextOff), addr)
}

// LinkNewChunk allocates a fresh chunk, links it after this one, and
// returns it.
func (c *ChunkWrapper) LinkNewChunk(gc func(*Allocator) *Fault) (*ChunkWrapper, *Fault) {
	next, f := c.alloc.Chunk(gc)
	if f != nil {
		return nil, f
	}
	if f := c.WriteNext(next.Address()); f != nil {
		return nil, f
	}
	return next, nil
}

// TraverseAddresses walks every occupied slot across this chunk and
// every chunk linked after it, in order, invoking visit once per
// address.
func (c *ChunkWrapper) TraverseAddresses(visit func(Address) *Fault) *Fault {
	cur := c
	for cur != nil {
		n, f := cur.Length()
		if f != nil {
			return f
		}
		for i := uint8(0); i < n; i++ {
			addr, f := cur.Index(i)
			if f != nil {
				return f
			}
			if f := visit(addr); f != nil {
				return f
			}
		}
		cur, f = cur.FetchNext()
		if f != nil {
			return f
		}
	}
	return nil
}
