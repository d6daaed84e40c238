package heap

import "testing"

func newTestHeap() *Heap {
	return NewHeap(nil)
}

func TestRegionCodecRoundTrip(t *testing.T) {
	h := newTestHeap()
	r, f := h.RegionAt(0)
	if f != nil {
		t.Fatalf("RegionAt(0) failed: %v", f)
	}

	if f := r.WriteU8(100, 0x42); f != nil {
		t.Fatalf("WriteU8 failed: %v", f)
	}
	got, f := r.ReadU8(100)
	if f != nil {
		t.Fatalf("ReadU8 failed: %v", f)
	}
	if got != 0x42 {
		t.Errorf("ReadU8 = %d, want %d", got, 0x42)
	}

	if f := r.WriteI8(150, -7); f != nil {
		t.Fatalf("WriteI8 failed: %v", f)
	}
	gotI8, f := r.ReadI8(150)
	if f != nil {
		t.Fatalf("ReadI8 failed: %v", f)
	}
	if gotI8 != -7 {
		t.Errorf("ReadI8 = %d, want %d", gotI8, -7)
	}

	if f := r.WriteI32(200, -12345); f != nil {
		t.Fatalf("WriteI32 failed: %v", f)
	}
	gotI, f := r.ReadI32(200)
	if f != nil {
		t.Fatalf("ReadI32 failed: %v", f)
	}
	if gotI != -12345 {
		t.Errorf("ReadI32 = %d, want %d", gotI, -12345)
	}

	if f := r.WriteF64(300, 3.14159); f != nil {
		t.Fatalf("WriteF64 failed: %v", f)
	}
	gotF, f := r.ReadF64(300)
	if f != nil {
		t.Fatalf("ReadF64 failed: %v", f)
	}
	if gotF != 3.14159 {
		t.Errorf("ReadF64 = %v, want %v", gotF, 3.14159)
	}
}

func TestRegionOutOfRange(t *testing.T) {
	h := newTestHeap()
	r, _ := h.RegionAt(0)

	_, f := r.ReadU32(RegionSize - 2)
	if f == nil {
		t.Fatal("expected OUT_OF_RANGE fault, got nil")
	}
	if f.Kind != OutOfRange {
		t.Errorf("Kind = %v, want %v", f.Kind, OutOfRange)
	}
}

func TestRegionInitialHeader(t *testing.T) {
	h := newTestHeap()
	r, f := h.RegionAt(3)
	if f != nil {
		t.Fatalf("RegionAt(3) failed: %v", f)
	}
	if r.Kind() != RegionEden {
		t.Errorf("Kind() = %d, want RegionEden (%d)", r.Kind(), RegionEden)
	}
	if r.Counter() != regionHeaderSize {
		t.Errorf("Counter() = %d, want %d", r.Counter(), regionHeaderSize)
	}
}

func TestRegionCreateMonoAdvancesCounter(t *testing.T) {
	h := newTestHeap()
	r, _ := h.RegionAt(0)

	before := r.Counter()
	m, f := r.CreateMono(MonoInt32)
	if f != nil {
		t.Fatalf("CreateMono failed: %v", f)
	}
	size, _ := monoSize(MonoInt32)
	if r.Counter() != before+size {
		t.Errorf("Counter() = %d, want %d", r.Counter(), before+size)
	}
	if m.Kind() != MonoInt32 {
		t.Errorf("Kind() = %d, want MonoInt32", m.Kind())
	}
}

func TestRegionFullFault(t *testing.T) {
	h := newTestHeap()
	r, _ := h.RegionAt(0)

	var lastFault *Fault
	for i := 0; i < RegionSize; i++ {
		_, f := r.CreateMono(MonoInt32)
		if f != nil {
			lastFault = f
			break
		}
	}
	if lastFault == nil {
		t.Fatal("expected the region to eventually report REGION_FULL")
	}
	if lastFault.Kind != RegionFull {
		t.Errorf("Kind = %v, want %v", lastFault.Kind, RegionFull)
	}
}

func TestRegionTraverseVisitsEveryMono(t *testing.T) {
	h := newTestHeap()
	r, _ := h.RegionAt(0)

	const n = 5
	for i := 0; i < n; i++ {
		m, f := r.CreateMono(MonoInt32)
		if f != nil {
			t.Fatalf("CreateMono failed: %v", f)
		}
		if f := m.WriteInt32(int32(i)); f != nil {
			t.Fatalf("WriteInt32 failed: %v", f)
		}
	}

	var seen []int32
	f := r.Traverse(func(m *Mono) *Fault {
		v, f := m.ReadInt32()
		if f != nil {
			return f
		}
		seen = append(seen, v)
		return nil
	})
	if f != nil {
		t.Fatalf("Traverse failed: %v", f)
	}
	if len(seen) != n {
		t.Fatalf("visited %d monos, want %d", len(seen), n)
	}
	for i, v := range seen {
		if v != int32(i) {
			t.Errorf("seen[%d] = %d, want %d", i, v, i)
		}
	}
}
