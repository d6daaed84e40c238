package heap

// Heap owns the full fixed pool of regions and resolves addresses into
// Region/Mono views. It never frees a region's backing storage; the GC
// only ever compacts live data into other regions the Heap already
// owns.
type Heap struct {
	// storage is the single contiguous backing allocation for every
	// region: NumberRegions * RegionSize bytes. Region i owns the slice
	// storage[i*RegionSize : (i+1)*RegionSize].
	storage []byte

	// regions is the descriptor for each region index, lazily
	// initialized on first access via RegionAt.
	regions []*Region

	tracer *Tracer
}

// NewHeap allocates the full region pool and returns an empty Heap. No
// region is initialized until it is first touched.
func NewHeap(tracer *Tracer) *Heap {
	h := &Heap{
		storage: make([]byte, uint64(NumberRegions)*uint64(RegionSize)),
		regions: make([]*Region, NumberRegions),
		tracer:  tracer,
	}
	tracer.Printf("heap: allocated %d regions of %d bytes", NumberRegions, RegionSize)
	return h
}

// regionIndex returns the region index an address falls in, and its
// region-local offset.
func regionIndex(addr Address) (index int, off offset) {
	return int(addr / RegionSize), offset(addr % RegionSize)
}

// RegionAt returns the region at the given index, initializing its
// descriptor and header on first access.
func (h *Heap) RegionAt(index int) (*Region, *Fault) {
	if index < 0 || index >= NumberRegions {
		return nil, newFault(OutOfRange, "region index %d out of range [0, %d)", index, NumberRegions)
	}
	if h.regions[index] != nil {
		return h.regions[index], nil
	}
	base := Address(index) * RegionSize
	content := h.storage[uint64(index)*RegionSize : uint64(index+1)*RegionSize]
	r := newRegionOverContent(h, base, content)
	if f := r.readHeader(); f != nil {
		return nil, f
	}
	h.regions[index] = r
	return r, nil
}

// RegionFromContent rebinds the descriptor for region index to the
// given content, re-reading its header. The GC does not call it: it
// reuses compacted regions in place through ResetRegion.
func (h *Heap) RegionFromContent(index int, content []byte) (*Region, *Fault) {
	if index < 0 || index >= NumberRegions {
		return nil, newFault(OutOfRange, "region index %d out of range [0, %d)", index, NumberRegions)
	}
	base := Address(index) * RegionSize
	r := newRegionOverContent(h, base, content)
	if f := r.readHeader(); f != nil {
		return nil, f
	}
	h.regions[index] = r
	return r, nil
}

// ResetRegion reinitializes the region at index to a brand-new, empty
// header, discarding its prior live span. Used by the GC once a
// region's live data has been copied elsewhere.
func (h *Heap) ResetRegion(index int) (*Region, *Fault) {
	r, f := h.RegionAt(index)
	if f != nil {
		return nil, f
	}
	for i := range r.content {
		r.content[i] = 0
	}
	r.initHeader()
	return r, nil
}

// FetchMono resolves a heap address to a Mono view, reading the kind
// byte at that address from its owning region.
func (h *Heap) FetchMono(addr Address) (*Mono, *Fault) {
	idx, off := regionIndex(addr)
	r, f := h.RegionAt(idx)
	if f != nil {
		return nil, f
	}
	return r.MonoAtOffset(off)
}

// FetchRegion resolves a heap address to its owning region.
func (h *Heap) FetchRegion(addr Address) (*Region, *Fault) {
	idx, _ := regionIndex(addr)
	return h.RegionAt(idx)
}

// NumberOfRegions reports how many region slots the heap has, whether
// or not they have been touched yet.
func (h *Heap) NumberOfRegions() int { return NumberRegions }

// RegionContent returns a copy of the raw bytes backing the region at
// index, header included. Used by the snapshot codec to serialize
// region state without exposing the live backing array.
func (h *Heap) RegionContent(index int) ([]byte, *Fault) {
	r, f := h.RegionAt(index)
	if f != nil {
		return nil, f
	}
	out := make([]byte, len(r.content))
	copy(out, r.content)
	return out, nil
}

// LoadRegionContent overwrites the region at index with content
// (which must be exactly RegionSize bytes) and re-reads its header.
// Used by the snapshot codec to restore region state.
func (h *Heap) LoadRegionContent(index int, content []byte) (*Region, *Fault) {
	if index < 0 || index >= NumberRegions {
		return nil, newFault(OutOfRange, "region index %d out of range [0, %d)", index, NumberRegions)
	}
	if len(content) != RegionSize {
		return nil, newFault(OutOfRange, "region content must be %d bytes, got %d", RegionSize, len(content))
	}
	buf := h.storage[uint64(index)*RegionSize : uint64(index+1)*RegionSize]
	copy(buf, content)
	h.regions[index] = nil
	return h.RegionAt(index)
}

// Tracer returns the heap's tracer (possibly nil).
func (h *Heap) Tracer() *Tracer { return h.tracer }
