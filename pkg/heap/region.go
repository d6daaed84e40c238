package heap

import (
	"encoding/binary"
	"math"
)

// Region is a fixed-size (RegionSize) byte buffer: the unit of GC. Its
// first regionHeaderSize bytes are a header (4-byte bump counter + a
// 1-byte kind tag); everything in [regionHeaderSize, counter) is a
// sequence of monos laid out head to tail with no gaps.
type Region struct {
	heap *Heap

	// base is the heap address of this region's first byte.
	base Address

	// content is the backing buffer. It is always exactly RegionSize
	// bytes and is owned by the Heap; Region never reallocates it.
	content []byte

	// counter is the index of the next unoccupied byte. Persisted to
	// content[0:4] on every change via writeCounter.
	counter uint32

	// kind is the region's classification. Persisted to content[4].
	kind byte
}

// Base returns the heap address of this region's first byte.
func (r *Region) Base() Address { return r.base }

// Kind returns the region's current classification.
func (r *Region) Kind() byte { return r.kind }

// Counter returns the offset of the next unoccupied byte.
func (r *Region) Counter() uint32 { return r.counter }

// Occupancy returns the fraction of the region's bytes that are in use,
// as counter/RegionSize. Used by the GC to classify young regions.
func (r *Region) Occupancy() float64 {
	return float64(r.counter) / float64(RegionSize)
}

// newRegionOverContent constructs a Region descriptor over a raw buffer
// already owned by the heap, without reading or initializing its
// header. Callers must follow with either readHeader (existing content)
// or initHeader (brand new content).
func newRegionOverContent(h *Heap, base Address, content []byte) *Region {
	return &Region{heap: h, base: base, content: content}
}

// initHeader initializes a never-before-used region's header: counter
// starts at regionHeaderSize, kind starts at RegionEden.
func (r *Region) initHeader() {
	r.counter = regionHeaderSize
	r.kind = RegionEden
	r.writeCounter()
	r.content[4] = RegionEden
}

// readHeader loads counter and kind from already-initialized content.
// A zero counter together with a zero kind byte means the region was
// never initialized in this content block; in that case readHeader
// falls back to initHeader. A zero kind byte alone is promoted to
// RegionEden, and a zero counter alone is reset to regionHeaderSize, so
// every Region a caller obtains is well-formed.
func (r *Region) readHeader() *Fault {
	counter := binary.LittleEndian.Uint32(r.content[0:4])
	kindByte := r.content[4]

	if counter == 0 && kindByte == 0 {
		r.initHeader()
		return nil
	}

	if kindByte == 0 {
		r.kind = RegionEden
		r.content[4] = RegionEden
	} else if !isValidRegionKind(kindByte) {
		return newFault(WrongKind, "unknown region kind: %d", kindByte)
	} else {
		r.kind = kindByte
	}

	if counter == 0 {
		r.counter = regionHeaderSize
		r.writeCounter()
	} else {
		r.counter = counter
	}
	return nil
}

// writeCounter persists r.counter to content[0:4].
func (r *Region) writeCounter() {
	binary.LittleEndian.PutUint32(r.content[0:4], r.counter)
}

// WriteKind sets the region's kind byte. kind must be one of the
// declared region kinds.
func (r *Region) WriteKind(kind byte) *Fault {
	if !isValidRegionKind(kind) {
		return newFault(WrongKind, "unknown region kind: %d", kind)
	}
	r.kind = kind
	r.content[4] = kind
	return nil
}

// Promote is left unimplemented: the source never transitions a
// region's kind from Eden to Survivor/Tenured, and this port keeps
// that simplification explicit rather than guessing a policy.
func (r *Region) Promote(byte) *Fault {
	return newFault(Unimplemented, "region kind promotion is not implemented")
}

// capable reports whether n more bytes fit before RegionSize.
func (r *Region) capable(n uint32) bool {
	return uint64(r.counter)+uint64(n) <= RegionSize
}

// checkBounds validates that [at, at+width) lies within the region.
func (r *Region) checkBounds(at offset, width uint32) *Fault {
	if uint64(at)+uint64(width) > RegionSize {
		return newFault(OutOfRange, "access [%d, %d) out of region range [0, %d)", at, uint64(at)+uint64(width), RegionSize)
	}
	return nil
}

// --- Byte codec: position-indexed, range-checked, little-endian. ---
//
// Read* never mutates counter. New* writes then advances counter by
// the width written, and is the correct primitive when creating a
// mono's payload for the first time. Write* never touches counter and
// is the correct primitive for in-place updates of existing monos.

func (r *Region) ReadU8(at offset) (uint8, *Fault) {
	if f := r.checkBounds(at, 1); f != nil {
		return 0, f
	}
	return r.content[at], nil
}

// ReadByte is an alias for ReadU8.
func (r *Region) ReadByte(at offset) (byte, *Fault) { return r.ReadU8(at) }

func (r *Region) ReadI8(at offset) (int8, *Fault) {
	v, f := r.ReadU8(at)
	return int8(v), f
}

func (r *Region) ReadU32(at offset) (uint32, *Fault) {
	if f := r.checkBounds(at, 4); f != nil {
		return 0, f
	}
	return binary.LittleEndian.Uint32(r.content[at : at+4]), nil
}

func (r *Region) ReadU64(at offset) (uint64, *Fault) {
	if f := r.checkBounds(at, 8); f != nil {
		return 0, f
	}
	return binary.LittleEndian.Uint64(r.content[at : at+8]), nil
}

// ReadAddress is an alias for ReadU32: pointer fields are stored as
// 4-byte addresses by convention (see Address).
func (r *Region) ReadAddress(at offset) (Address, *Fault) {
	v, f := r.ReadU32(at)
	return Address(v), f
}

func (r *Region) ReadI32(at offset) (int32, *Fault) {
	v, f := r.ReadU32(at)
	return int32(v), f
}

func (r *Region) ReadF32(at offset) (float32, *Fault) {
	v, f := r.ReadU32(at)
	if f != nil {
		return 0, f
	}
	return math.Float32frombits(v), nil
}

func (r *Region) ReadF64(at offset) (float64, *Fault) {
	v, f := r.ReadU64(at)
	if f != nil {
		return 0, f
	}
	return math.Float64frombits(v), nil
}

func (r *Region) WriteU8(at offset, v uint8) *Fault {
	if f := r.checkBounds(at, 1); f != nil {
		return f
	}
	r.content[at] = v
	return nil
}

// WriteByte is an alias for WriteU8.
func (r *Region) WriteByte(at offset, v byte) *Fault { return r.WriteU8(at, v) }

func (r *Region) WriteI8(at offset, v int8) *Fault {
	return r.WriteU8(at, uint8(v))
}

func (r *Region) WriteU32(at offset, v uint32) *Fault {
	if f := r.checkBounds(at, 4); f != nil {
		return f
	}
	binary.LittleEndian.PutUint32(r.content[at:at+4], v)
	return nil
}

func (r *Region) WriteU64(at offset, v uint64) *Fault {
	if f := r.checkBounds(at, 8); f != nil {
		return f
	}
	binary.LittleEndian.PutUint64(r.content[at:at+8], v)
	return nil
}

// WriteAddress is an alias for WriteU32, with a range check against
// the 32-bit pointer width convention (see Open Question 1 in
// SPEC_FULL.md).
func (r *Region) WriteAddress(at offset, addr Address) *Fault {
	if addr > math.MaxUint32 {
		return newFault(OutOfRange, "address %d exceeds 32-bit pointer width", addr)
	}
	return r.WriteU32(at, uint32(addr))
}

func (r *Region) WriteI32(at offset, v int32) *Fault {
	return r.WriteU32(at, uint32(v))
}

func (r *Region) WriteF32(at offset, v float32) *Fault {
	return r.WriteU32(at, math.Float32bits(v))
}

func (r *Region) WriteF64(at offset, v float64) *Fault {
	return r.WriteU64(at, math.Float64bits(v))
}

func (r *Region) NewU8(at offset, v uint8) *Fault {
	if f := r.WriteU8(at, v); f != nil {
		return f
	}
	r.counter++
	r.writeCounter()
	return nil
}

func (r *Region) NewI8(at offset, v int8) *Fault {
	if f := r.WriteI8(at, v); f != nil {
		return f
	}
	r.counter++
	r.writeCounter()
	return nil
}

func (r *Region) NewU32(at offset, v uint32) *Fault {
	if f := r.WriteU32(at, v); f != nil {
		return f
	}
	r.counter += 4
	r.writeCounter()
	return nil
}

func (r *Region) NewU64(at offset, v uint64) *Fault {
	if f := r.WriteU64(at, v); f != nil {
		return f
	}
	r.counter += 8
	r.writeCounter()
	return nil
}

func (r *Region) NewAddress(at offset, addr Address) *Fault {
	if f := r.WriteAddress(at, addr); f != nil {
		return f
	}
	r.counter += 4
	r.writeCounter()
	return nil
}

func (r *Region) NewI32(at offset, v int32) *Fault {
	return r.NewU32(at, uint32(v))
}

func (r *Region) NewF32(at offset, v float32) *Fault {
	return r.NewU32(at, math.Float32bits(v))
}

func (r *Region) NewF64(at offset, v float64) *Fault {
	return r.NewU64(at, math.Float64bits(v))
}

// contentCloneTo copies this region's live bytes [regionHeaderSize,
// counter) into dest starting at destOffset, without touching dest's
// header. Used by the GC to compact a source region into a fresh one.
func (r *Region) contentCloneTo(dest *Region, destOffset uint32) {
	payload := r.content[regionHeaderSize:r.counter]
	copy(dest.content[destOffset:], payload)
}

// payloadLen returns the number of live payload bytes, excluding the
// header: counter - regionHeaderSize.
func (r *Region) payloadLen() uint32 {
	return r.counter - regionHeaderSize
}

// CreateMono reserves size(kind) bytes at the end of the region's live
// span, writes the header byte, and returns a Mono view over it. Fails
// with RegionFull if the mono would not fit.
func (r *Region) CreateMono(kind byte) (*Mono, *Fault) {
	size, f := monoSize(kind)
	if f != nil {
		return nil, f
	}
	if !r.capable(size) {
		return nil, newFault(RegionFull, "cannot allocate %d bytes in region at %d (counter=%d)", size, r.base, r.counter)
	}
	beginOffset := r.counter
	mono, f := r.monoAt(kind, beginOffset)
	if f != nil {
		return nil, f
	}
	if f := mono.writeHeader(); f != nil {
		return nil, f
	}
	r.counter += size
	r.writeCounter()
	return mono, nil
}

// monoAt builds a Mono descriptor for kind starting at beginOffset,
// without writing anything. It is a pure view constructor.
func (r *Region) monoAt(kind byte, beginOffset offset) (*Mono, *Fault) {
	size, f := monoSize(kind)
	if f != nil {
		return nil, f
	}
	if uint64(beginOffset)+uint64(size) > RegionSize {
		return nil, newFault(OutOfRange, "mono at offset %d (size %d) exceeds region bounds", beginOffset, size)
	}
	beginFrom := r.base + uint64(beginOffset)
	return &Mono{
		region:      r,
		kind:        kind,
		beginOffset: beginOffset,
		endOffset:   beginOffset + size,
		beginFrom:   beginFrom,
		endAt:       beginFrom + uint64(size),
		valueFrom:   beginFrom + 1,
	}, nil
}

// MonoAtOffset resolves the mono whose header lives at region-local
// offset at, reading its kind byte from content.
func (r *Region) MonoAtOffset(at offset) (*Mono, *Fault) {
	kind, f := r.ReadByte(at)
	if f != nil {
		return nil, f
	}
	return r.monoAt(kind, at)
}

// Traverse walks the region's monos in address order, starting at
// regionHeaderSize, invoking visit once per mono. It stops when it
// reaches counter or encounters a zero header byte (unoccupied space),
// guaranteeing monotonic progress on every iteration.
func (r *Region) Traverse(visit func(*Mono) *Fault) *Fault {
	for at := offset(regionHeaderSize); at < r.counter; {
		kindByte, f := r.ReadByte(at)
		if f != nil {
			return f
		}
		if kindByte == 0 {
			break
		}
		mono, f := r.monoAt(kindByte, at)
		if f != nil {
			return f
		}
		if f := visit(mono); f != nil {
			return f
		}
		at = mono.endOffset
	}
	return nil
}
