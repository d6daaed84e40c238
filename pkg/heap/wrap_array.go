package heap

// Array layout (43 bytes total):
//
//	offset 0        kind byte (MonoArrayS8)
//	offset 1..5     length: 4-byte element count
//	offset 5..43    embedded CHUNK_S8 (the array's first chunk)
//
// The embedded chunk is a real, independently addressable CHUNK_S8:
// its own kind byte is written at offset 5, and it can be pointed to
// like any other chunk. Growing past ChunkSlots elements links
// freestanding chunks after it through ChunkWrapper.LinkNewChunk.
const (
	arrayLengthOff       = 1
	arrayEmbeddedChunkOff = 5
)

// ArrayWrapper is a live view over an ARRAY_S8 mono: a length-prefixed
// chain of chunks holding the array's elements as addresses.
type ArrayWrapper struct {
	alloc    *Allocator
	mono     *Mono
	embedded *ChunkWrapper
}

func newArrayWrapper(a *Allocator, m *Mono) (*ArrayWrapper, *Fault) {
	r := m.region
	embeddedOffset := m.beginOffset + arrayEmbeddedChunkOff
	chunkMono, f := r.monoAt(MonoChunkS8, embeddedOffset)
	if f != nil {
		return nil, f
	}
	if f := chunkMono.writeHeader(); f != nil {
		return nil, f
	}
	if f := chunkMono.region.WriteU8(chunkMono.beginOffset+chunkLengthOff, 0); f != nil {
		return nil, f
	}
	if f := chunkMono.region.WriteAddress(chunkMono.beginOffset+chunkNextOff, NullAddress); f != nil {
		return nil, f
	}
	if f := r.WriteU32(m.beginOffset+arrayLengthOff, 0); f != nil {
		return nil, f
	}
	return &ArrayWrapper{
		alloc:    a,
		mono:     m,
		embedded: newChunkWrapper(a, chunkMono),
	}, nil
}

// WrapArray resolves addr to an ARRAY_S8 mono and returns a wrapper
// over it, failing with WrongKind if addr does not reference an array.
func WrapArray(a *Allocator, addr Address) (*ArrayWrapper, *Fault) {
	m, f := a.heap.FetchMono(addr)
	if f != nil {
		return nil, f
	}
	if m.Kind() != MonoArrayS8 {
		return nil, newFault(WrongKind, "value at %d is not an array", addr)
	}
	return wrapExistingArray(a, m)
}

// wrapExistingArray builds an ArrayWrapper over an already-populated
// ARRAY_S8 mono, without touching its contents.
func wrapExistingArray(a *Allocator, m *Mono) (*ArrayWrapper, *Fault) {
	r := m.region
	chunkMono, f := r.monoAt(MonoChunkS8, m.beginOffset+arrayEmbeddedChunkOff)
	if f != nil {
		return nil, f
	}
	return &ArrayWrapper{alloc: a, mono: m, embedded: newChunkWrapper(a, chunkMono)}, nil
}

// Address returns the heap address of the array's header byte.
func (w *ArrayWrapper) Address() Address { return w.mono.Address() }

// Length returns the number of elements in the array.
func (w *ArrayWrapper) Length() (uint32, *Fault) {
	return w.mono.region.ReadU32(w.mono.beginOffset + arrayLengthOff)
}

func (w *ArrayWrapper) writeLength(n uint32) *Fault {
	return w.mono.region.WriteU32(w.mono.beginOffset+arrayLengthOff, n)
}

// findChunk returns the chunk holding logical element index, along
// with the element's slot within it.
func (w *ArrayWrapper) findChunk(index uint32) (*ChunkWrapper, uint8, *Fault) {
	chunkIdx := index / ChunkSlots
	slot := uint8(index % ChunkSlots)
	cur := w.embedded
	for i := uint32(0); i < chunkIdx; i++ {
		next, f := cur.FetchNext()
		if f != nil {
			return nil, 0, f
		}
		if next == nil {
			return nil, 0, newFault(OutOfRange, "array index %d has no backing chunk", index)
		}
		cur = next
	}
	return cur, slot, nil
}

// lastChunk walks the chunk chain to its tail.
func (w *ArrayWrapper) lastChunk() (*ChunkWrapper, *Fault) {
	cur := w.embedded
	for {
		next, f := cur.FetchNext()
		if f != nil {
			return nil, f
		}
		if next == nil {
			return cur, nil
		}
		cur = next
	}
}

// Index reads the address stored at logical element i.
func (w *ArrayWrapper) Index(i uint32) (Address, *Fault) {
	n, f := w.Length()
	if f != nil {
		return 0, f
	}
	if i >= n {
		return 0, newFault(OutOfRange, "array index %d out of range [0, %d)", i, n)
	}
	chunk, slot, f := w.findChunk(i)
	if f != nil {
		return 0, f
	}
	return chunk.Index(slot)
}

// SetIndex overwrites the address stored at logical element i.
func (w *ArrayWrapper) SetIndex(i uint32, addr Address) *Fault {
	n, f := w.Length()
	if f != nil {
		return f
	}
	if i >= n {
		return newFault(OutOfRange, "array index %d out of range [0, %d)", i, n)
	}
	chunk, slot, f := w.findChunk(i)
	if f != nil {
		return f
	}
	return chunk.SetIndex(slot, addr)
}

// Append adds addr as the array's new last element, linking a fresh
// chunk if the current tail is full.
func (w *ArrayWrapper) Append(addr Address, gc func(*Allocator) *Fault) *Fault {
	last, f := w.lastChunk()
	if f != nil {
		return f
	}
	full, f := last.IsFull()
	if f != nil {
		return f
	}
	if full {
		last, f = last.LinkNewChunk(gc)
		if f != nil {
			return f
		}
	}
	if f := last.Append(addr); f != nil {
		return f
	}
	n, f := w.Length()
	if f != nil {
		return f
	}
	return w.writeLength(n + 1)
}

// Push is an alias for Append, matching the guest language's naming.
func (w *ArrayWrapper) Push(addr Address, gc func(*Allocator) *Fault) *Fault {
	return w.Append(addr, gc)
}

// TraverseAddresses visits every element's address in order.
func (w *ArrayWrapper) TraverseAddresses(visit func(Address) *Fault) *Fault {
	n, f := w.Length()
	if f != nil {
		return f
	}
	seen := uint32(0)
	return w.embedded.TraverseAddresses(func(addr Address) *Fault {
		if seen >= n {
			return nil
		}
		seen++
		return visit(addr)
	})
}

// Clone allocates a new array containing the same elements, in order.
func (w *ArrayWrapper) Clone(gc func(*Allocator) *Fault) (*ArrayWrapper, *Fault) {
	dst, f := w.alloc.Array(gc)
	if f != nil {
		return nil, f
	}
	if f := w.TraverseAddresses(func(addr Address) *Fault {
		return dst.Append(addr, gc)
	}); f != nil {
		return nil, f
	}
	return dst, nil
}

// Slice allocates a new array holding elements [from, to] inclusive.
func (w *ArrayWrapper) Slice(from, to uint32, gc func(*Allocator) *Fault) (*ArrayWrapper, *Fault) {
	n, f := w.Length()
	if f != nil {
		return nil, f
	}
	if from > to || to >= n {
		return nil, newFault(OutOfRange, "slice [%d, %d] out of range [0, %d)", from, to, n)
	}
	dst, f := w.alloc.Array(gc)
	if f != nil {
		return nil, f
	}
	for i := from; i <= to; i++ {
		addr, f := w.Index(i)
		if f != nil {
			return nil, f
		}
		if f := dst.Append(addr, gc); f != nil {
			return nil, f
		}
	}
	return dst, nil
}

// Concat allocates a new array holding w's elements followed by
// other's elements.
func (w *ArrayWrapper) Concat(other *ArrayWrapper, gc func(*Allocator) *Fault) (*ArrayWrapper, *Fault) {
	dst, f := w.Clone(gc)
	if f != nil {
		return nil, f
	}
	if f := other.TraverseAddresses(func(addr Address) *Fault {
		return dst.Append(addr, gc)
	}); f != nil {
		return nil, f
	}
	return dst, nil
}

// Pop returns the array's last element alongside a newly allocated
// array holding every element but the last. w and its array are left
// unchanged.
func (w *ArrayWrapper) Pop(gc func(*Allocator) *Fault) (Address, *ArrayWrapper, *Fault) {
	n, f := w.Length()
	if f != nil {
		return 0, nil, f
	}
	if n == 0 {
		return 0, nil, newFault(OutOfRange, "pop from empty array")
	}
	last, f := w.Index(n - 1)
	if f != nil {
		return 0, nil, f
	}
	if n == 1 {
		rest, f := w.alloc.Array(gc)
		if f != nil {
			return 0, nil, f
		}
		return last, rest, nil
	}
	rest, f := w.Slice(0, n-2, gc)
	if f != nil {
		return 0, nil, f
	}
	return last, rest, nil
}

// Shift removes and returns the array's first element, returning a new
// array with the remainder. It is Remove(0).
func (w *ArrayWrapper) Shift(gc func(*Allocator) *Fault) (Address, *ArrayWrapper, *Fault) {
	return w.Remove(0, gc)
}

// Remove removes the element at logical index i, returning its address
// alongside a new array holding everything else in order.
func (w *ArrayWrapper) Remove(i uint32, gc func(*Allocator) *Fault) (Address, *ArrayWrapper, *Fault) {
	n, f := w.Length()
	if f != nil {
		return 0, nil, f
	}
	if i >= n {
		return 0, nil, newFault(OutOfRange, "remove index %d out of range [0, %d)", i, n)
	}
	removed, f := w.Index(i)
	if f != nil {
		return 0, nil, f
	}
	dst, f := w.alloc.Array(gc)
	if f != nil {
		return 0, nil, f
	}
	for j := uint32(0); j < n; j++ {
		if j == i {
			continue
		}
		addr, f := w.Index(j)
		if f != nil {
			return 0, nil, f
		}
		if f := dst.Append(addr, gc); f != nil {
			return 0, nil, f
		}
	}
	return removed, dst, nil
}
