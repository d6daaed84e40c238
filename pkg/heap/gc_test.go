package heap

import "testing"

// fillRegionToOccupancy allocates INT32 monos in a's current region
// until its occupancy reaches at least frac, then rolls the allocator
// to a new region so subsequent allocations don't land in it.
func fillRegionToOccupancy(t *testing.T, a *Allocator, frac float64) int {
	t.Helper()
	r, f := a.latestRegion()
	if f != nil {
		t.Fatalf("latestRegion failed: %v", f)
	}
	idx, _ := regionIndex(r.Base())
	target := uint32(float64(RegionSize) * frac)
	for r.Counter() < target {
		if _, f := r.CreateMono(MonoInt32); f != nil {
			t.Fatalf("CreateMono failed: %v", f)
		}
	}
	if _, f := a.openNextRegion(); f != nil {
		t.Fatalf("openNextRegion failed: %v", f)
	}
	return idx
}

func TestMinorGCCompactsSparseRegions(t *testing.T) {
	h := newTestHeap()
	a, f := NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}

	idxA := fillRegionToOccupancy(t, a, 0.2)  // lands in the lessThan40 bucket
	idxB := fillRegionToOccupancy(t, a, 0.45) // lands in the lessThan60 bucket

	orderBefore := a.Order()
	if len(orderBefore) != 3 { // idxA, idxB, and the freshly opened third region
		t.Fatalf("Order() before GC has %d entries, want 3", len(orderBefore))
	}

	stats, f := MinorGCWithStats(a)
	if f != nil {
		t.Fatalf("MinorGCWithStats failed: %v", f)
	}
	if stats.RegionsPaired != 1 {
		t.Errorf("RegionsPaired = %d, want 1", stats.RegionsPaired)
	}
	if stats.RegionsReleased != 2 {
		t.Errorf("RegionsReleased = %d, want 2", stats.RegionsReleased)
	}

	orderAfter := a.Order()
	if len(orderAfter) != 2 {
		t.Fatalf("Order() after GC has %d entries, want 2", len(orderAfter))
	}
	if orderAfter[0] == idxA || orderAfter[0] == idxB {
		t.Errorf("expected the compacted pair to land in a fresh region, got %d", orderAfter[0])
	}
}

// TestMinorGCPreservesPointerIntegrity exercises the case a real guest
// runtime relies on: a root reference to the array is stored in an
// ADDRESS mono that lives in a region packed dense enough to stay
// out of the GC's candidate set, so the root mono's own address never
// moves. The array it points to lives in a sparse region that does get
// compacted, and the GC's pointer rewrite pass updates the root's
// stored value in place.
func TestMinorGCPreservesPointerIntegrity(t *testing.T) {
	h := newTestHeap()
	a, f := NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}

	// Region 0 holds only the root slot; pack it past the eligibility
	// threshold with junk so it is never itself a compaction candidate.
	rootRegion, f := a.latestRegion()
	if f != nil {
		t.Fatalf("latestRegion failed: %v", f)
	}
	root, f := rootRegion.CreateMono(MonoAddress)
	if f != nil {
		t.Fatalf("CreateMono(root) failed: %v", f)
	}
	target := uint32(float64(RegionSize) * (youngOccupancyThreshold + 0.05))
	for rootRegion.Counter() < target {
		if _, f := rootRegion.CreateMono(MonoInt32); f != nil {
			t.Fatalf("CreateMono(junk) failed: %v", f)
		}
	}
	if _, f := a.openNextRegion(); f != nil {
		t.Fatalf("openNextRegion failed: %v", f)
	}

	arr, f := a.Array(MinorGC)
	if f != nil {
		t.Fatalf("Array failed: %v", f)
	}
	if f := root.WriteAddress(arr.Address()); f != nil {
		t.Fatalf("WriteAddress(root) failed: %v", f)
	}

	var elements []int32
	for i := int32(0); i < 20; i++ {
		m, f := a.Int32(i, MinorGC)
		if f != nil {
			t.Fatalf("Int32 failed: %v", f)
		}
		elements = append(elements, i)
		if f := arr.Append(m.Address(), MinorGC); f != nil {
			t.Fatalf("Append failed: %v", f)
		}
	}

	// Pack the array's own region into the lessThan60 bucket, then open
	// a fresh lessThan40 region for it to pair with, so the GC actually
	// compacts the region the array lives in.
	fillRegionToOccupancy(t, a, 0.45)
	fillRegionToOccupancy(t, a, 0.2)

	if f := MinorGC(a); f != nil {
		t.Fatalf("MinorGC failed: %v", f)
	}

	newArrAddr, f := root.ReadAddress()
	if f != nil {
		t.Fatalf("reading root after GC failed: %v", f)
	}
	relocated, f := WrapArray(a, newArrAddr)
	if f != nil {
		t.Fatalf("WrapArray after GC failed: %v", f)
	}

	length, f := relocated.Length()
	if f != nil {
		t.Fatalf("Length failed after GC: %v", f)
	}
	if length != uint32(len(elements)) {
		t.Fatalf("Length() after GC = %d, want %d", length, len(elements))
	}

	for i := uint32(0); i < length; i++ {
		elemAddr, f := relocated.Index(i)
		if f != nil {
			t.Fatalf("Index(%d) failed after GC: %v", i, f)
		}
		m, f := h.FetchMono(elemAddr)
		if f != nil {
			t.Fatalf("FetchMono(%d) failed after GC: %v", elemAddr, f)
		}
		v, f := m.ReadInt32()
		if f != nil {
			t.Fatalf("ReadInt32 failed after GC: %v", f)
		}
		if v != elements[i] {
			t.Errorf("element %d = %d, want %d", i, v, elements[i])
		}
	}
}

func TestMinorGCNoEligiblePairsIsANoOp(t *testing.T) {
	h := newTestHeap()
	a, f := NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}

	before := a.Order()
	stats, f := MinorGCWithStats(a)
	if f != nil {
		t.Fatalf("MinorGCWithStats failed: %v", f)
	}
	if stats.RegionsPaired != 0 || stats.RegionsReleased != 0 {
		t.Errorf("expected a no-op GC, got %+v", stats)
	}
	after := a.Order()
	if len(before) != len(after) {
		t.Errorf("Order() changed on a no-op GC: %v -> %v", before, after)
	}
}
