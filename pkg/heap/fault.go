package heap

import "fmt"

// FaultKind discriminates the distinct failure modes a heap operation
// can raise. Callers assert on Kind rather than matching error text,
// following the corpus's practice of a small number of concrete typed
// errors instead of parsed strings.
type FaultKind uint8

const (
	// OutOfRange covers byte-codec bounds violations, array/chunk
	// indexing with an invalid index, and bad slice bounds.
	OutOfRange FaultKind = iota + 1
	// RegionFull means counter+size would exceed RegionSize. Recoverable
	// by the allocator rolling to a new region.
	RegionFull
	// ChunkFull means a chunk already holds ChunkSlots entries.
	// Recoverable by linking a new chunk.
	ChunkFull
	// HeapFull means no fresh regions remain in the pool.
	HeapFull
	// WrongKind means an unknown kind byte was encountered during
	// dispatch, size lookup, or a region-kind write.
	WrongKind
	// Underflow means a heap address is numerically below the region's
	// base address it was resolved against.
	Underflow
	// Unimplemented marks stubbed functionality (STRING/OBJECT/
	// NAMED_PROPERTY writes, region promotion).
	Unimplemented
	// OOM means the allocator could not place a mono even after
	// invoking the garbage collector.
	OOM
)

// String returns a human-readable name for the fault kind.
func (k FaultKind) String() string {
	switch k {
	case OutOfRange:
		return "OUT_OF_RANGE"
	case RegionFull:
		return "REGION_FULL"
	case ChunkFull:
		return "CHUNK_FULL"
	case HeapFull:
		return "HEAP_FULL"
	case WrongKind:
		return "WRONG_KIND"
	case Underflow:
		return "UNDERFLOW"
	case Unimplemented:
		return "UNIMPLEMENTED"
	case OOM:
		return "OOM"
	default:
		return fmt.Sprintf("FaultKind(%d)", uint8(k))
	}
}

// Fault is the single error type every heap operation returns. It
// carries a discriminable Kind plus a human-readable Message.
type Fault struct {
	Kind    FaultKind
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// newFault builds a *Fault of the given kind with a formatted message.
// Callers discriminate on the kind through AsFault rather than
// sentinel errors:
//
//	if fault, ok := heap.AsFault(err); ok && fault.Kind == heap.OutOfRange { ... }
func newFault(kind FaultKind, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsFault unwraps err into a *Fault, if it is one.
func AsFault(err error) (*Fault, bool) {
	f, ok := err.(*Fault)
	return f, ok
}
