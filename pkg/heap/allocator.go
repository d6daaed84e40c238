package heap

// Allocator is the bump allocator over a Heap: it tracks the ordered
// list of regions it has opened for allocation (the young generation,
// in the order regions were first touched) and always allocates into
// the most recently opened region, rolling to a fresh one when full.
type Allocator struct {
	heap *Heap

	// order lists region indices in the order the allocator first wrote
	// into them. The GC buckets regions by occupancy in the order they
	// appear here and pairs them by position within those buckets, so
	// this order is significant and never reshuffled except by GC itself.
	order []int

	next int // next never-claimed region index to hand out

	// free holds region indices released by the GC after compaction,
	// preferred over next so compacted space is actually reused.
	free []int

	tracer *Tracer
}

// NewAllocator returns an Allocator bound to heap, opening region 0 as
// its first live region.
func NewAllocator(h *Heap) (*Allocator, *Fault) {
	a := &Allocator{heap: h, tracer: h.tracer}
	if _, f := a.openNextRegion(); f != nil {
		return nil, f
	}
	return a, nil
}

// claimRegion hands out an unused region index without recording it in
// order. Fails with HeapFull once no free or never-used index remains.
func (a *Allocator) claimRegion() (*Region, int, *Fault) {
	if len(a.free) > 0 {
		idx := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		r, f := a.heap.RegionAt(idx)
		return r, idx, f
	}
	if a.next >= NumberRegions {
		return nil, 0, newFault(HeapFull, "no fresh regions remain (%d claimed)", a.next)
	}
	idx := a.next
	a.next++
	r, f := a.heap.RegionAt(idx)
	return r, idx, f
}

// releaseRegions returns previously-live region indices to the free
// pool. Called by the GC once their content has been compacted
// elsewhere and any live pointers into them have been rewritten.
func (a *Allocator) releaseRegions(idxs []int) {
	a.free = append(a.free, idxs...)
}

// openNextRegion claims the next unused region index, appends it to
// order, and returns its descriptor. Fails with HeapFull once every
// region has been claimed.
func (a *Allocator) openNextRegion() (*Region, *Fault) {
	r, idx, f := a.claimRegion()
	if f != nil {
		return nil, f
	}
	a.order = append(a.order, idx)
	a.tracer.Printf("allocator: opened region %d (index %d in order)", idx, len(a.order)-1)
	return r, nil
}

// latestRegion returns the region currently receiving allocations: the
// last entry in order.
func (a *Allocator) latestRegion() (*Region, *Fault) {
	if len(a.order) == 0 {
		return a.openNextRegion()
	}
	return a.heap.RegionAt(a.order[len(a.order)-1])
}

// Order returns a snapshot of the allocator's region ordering, for the
// GC to consume when pairing regions for compaction.
func (a *Allocator) Order() []int {
	out := make([]int, len(a.order))
	copy(out, a.order)
	return out
}

// SetOrder replaces the allocator's region ordering wholesale. Called
// by the GC after compaction reassigns which indices are live and in
// what order.
func (a *Allocator) SetOrder(order []int) {
	a.order = order
}

// Allocate reserves a mono of the given kind, rolling to a new region
// on RegionFull and invoking the collector on HeapFull. It returns the
// live Mono view on success.
func (a *Allocator) Allocate(kind byte, gc func(*Allocator) *Fault) (*Mono, *Fault) {
	r, f := a.latestRegion()
	if f != nil {
		return nil, f
	}
	m, f := r.CreateMono(kind)
	if f == nil {
		return m, nil
	}
	if f.Kind != RegionFull {
		return nil, f
	}

	next, f := a.openNextRegion()
	if f == nil {
		return next.CreateMono(kind)
	}
	if f.Kind != HeapFull || gc == nil {
		return nil, f
	}
	if f := gc(a); f != nil {
		return nil, f
	}
	next, f = a.latestRegion()
	if f != nil {
		return nil, f
	}
	m, f = next.CreateMono(kind)
	if f != nil && f.Kind == RegionFull {
		if opened, of := a.openNextRegion(); of == nil {
			m, f = opened.CreateMono(kind)
		}
	}
	if f != nil {
		return nil, newFault(OOM, "heap exhausted after collection: %s", f.Message)
	}
	return m, nil
}

// Int32 allocates and initializes an INT32 mono.
func (a *Allocator) Int32(v int32, gc func(*Allocator) *Fault) (*Mono, *Fault) {
	m, f := a.Allocate(MonoInt32, gc)
	if f != nil {
		return nil, f
	}
	if f := m.WriteInt32(v); f != nil {
		return nil, f
	}
	return m, nil
}

// Float64 allocates and initializes a FLOAT64 mono.
func (a *Allocator) Float64(v float64, gc func(*Allocator) *Fault) (*Mono, *Fault) {
	m, f := a.Allocate(MonoFloat64, gc)
	if f != nil {
		return nil, f
	}
	if f := m.WriteFloat64(v); f != nil {
		return nil, f
	}
	return m, nil
}

// AddressMono allocates and initializes an ADDRESS mono.
func (a *Allocator) AddressMono(v Address, gc func(*Allocator) *Fault) (*Mono, *Fault) {
	m, f := a.Allocate(MonoAddress, gc)
	if f != nil {
		return nil, f
	}
	if f := m.WriteAddress(v); f != nil {
		return nil, f
	}
	return m, nil
}

// Array allocates a fresh ARRAY_S8, with its embedded default chunk
// initialized to empty, and returns its wrapper.
func (a *Allocator) Array(gc func(*Allocator) *Fault) (*ArrayWrapper, *Fault) {
	m, f := a.Allocate(MonoArrayS8, gc)
	if f != nil {
		return nil, f
	}
	return newArrayWrapper(a, m)
}

// Chunk allocates a standalone CHUNK_S8 and returns its wrapper.
func (a *Allocator) Chunk(gc func(*Allocator) *Fault) (*ChunkWrapper, *Fault) {
	m, f := a.Allocate(MonoChunkS8, gc)
	if f != nil {
		return nil, f
	}
	return newChunkWrapper(a, m), nil
}

// Heap returns the allocator's underlying heap.
func (a *Allocator) Heap() *Heap { return a.heap }
