package snapshot

import (
	"bytes"
	"testing"

	"github.com/chazu/maggie/pkg/heap"
)

func TestCaptureAndRestoreRoundTrip(t *testing.T) {
	h := heap.NewHeap(nil)
	a, f := heap.NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}
	arr, f := a.Array(heap.MinorGC)
	if f != nil {
		t.Fatalf("Array failed: %v", f)
	}
	for i := int32(0); i < 5; i++ {
		m, f := a.Int32(i, heap.MinorGC)
		if f != nil {
			t.Fatalf("Int32 failed: %v", f)
		}
		if f := arr.Append(m.Address(), heap.MinorGC); f != nil {
			t.Fatalf("Append failed: %v", f)
		}
	}

	snap, err := Capture(h, a.Order())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	data, err := Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	decoded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	h2 := heap.NewHeap(nil)
	order, err := Restore(h2, decoded)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if len(order) != len(a.Order()) {
		t.Fatalf("restored order has %d entries, want %d", len(order), len(a.Order()))
	}

	restoredArr, fault := heap.WrapArray(mustAllocator(t, h2), arr.Address())
	if fault != nil {
		t.Fatalf("WrapArray on restored heap failed: %v", fault)
	}
	length, fault := restoredArr.Length()
	if fault != nil {
		t.Fatalf("Length on restored array failed: %v", fault)
	}
	if length != 5 {
		t.Errorf("restored array length = %d, want 5", length)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	h := heap.NewHeap(nil)
	a, f := heap.NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}
	if _, f := a.Int32(99, heap.MinorGC); f != nil {
		t.Fatalf("Int32 failed: %v", f)
	}

	snap, err := Capture(h, a.Order())
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteCompressed(&buf, snap); err != nil {
		t.Fatalf("WriteCompressed failed: %v", err)
	}

	decoded, err := ReadCompressed(&buf)
	if err != nil {
		t.Fatalf("ReadCompressed failed: %v", err)
	}
	if len(decoded.Regions) != len(snap.Regions) {
		t.Errorf("decoded has %d regions, want %d", len(decoded.Regions), len(snap.Regions))
	}
}

// mustAllocator builds an allocator over h for tests that only need to
// read a heap already populated by Restore. Its first region is the
// restored region 0, whose header is read rather than reinitialized.
func mustAllocator(t *testing.T, h *heap.Heap) *heap.Allocator {
	t.Helper()
	a, f := heap.NewAllocator(h)
	if f != nil {
		t.Fatalf("NewAllocator failed: %v", f)
	}
	return a
}
