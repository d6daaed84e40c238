// Package heap implements a region-based managed heap for a small
// dynamically-typed guest language: a fixed pool of byte regions, a
// bump allocator that carves tagged records ("monos") out of them, and
// a relocating minor collector that compacts pairs of young regions.
package heap

// RegionSize is the fixed size, in bytes, of every region in the heap.
const RegionSize = 1024000

// NumberRegions is the total number of regions the heap preallocates.
const NumberRegions = 256

// Region kind tags. A freshly created region reads as kind 0 and is
// promoted to Eden the first time its header is read.
const (
	RegionEden      byte = 11
	RegionSurvivor  byte = 12
	RegionTenured   byte = 13
	RegionHumongous byte = 14
)

// Mono kind tags. Sizes (including the 1-byte header) are fixed by the
// wire format and never change at runtime.
const (
	MonoInt32           byte = 1
	MonoAddress         byte = 11
	MonoFloat64         byte = 2
	MonoArrayS8         byte = 3
	MonoChunkS8         byte = 31
	MonoStringS8        byte = 4
	MonoObjectS8        byte = 5
	MonoNamedPropertyS8 byte = 6
)

// ChunkSlots is the number of element pointers a single CHUNK_S8 holds.
const ChunkSlots = 8

// regionHeaderSize is the number of bytes reserved for the region
// header: a 4-byte bump counter followed by a 1-byte kind tag.
const regionHeaderSize = 5

// Address identifies a byte within the heap: region index * RegionSize
// + offset within the region. Zero is reserved as the null address.
//
// Addresses are carried as uint64 in memory (see spec Open Question 1)
// but every on-disk pointer field is 4 bytes wide, since
// NumberRegions*RegionSize comfortably fits in 32 bits. Region.WriteAddress
// validates this at the point an address is stored.
type Address = uint64

// offset is a position within a single region, always < RegionSize.
type offset = uint32

// NullAddress is the reserved address meaning "no pointer".
const NullAddress Address = 0

// monoSize returns the total size, in bytes, of a mono with the given
// kind, including its 1-byte header. Returns a WrongKind fault for any
// value outside the mono kind table.
func monoSize(kind byte) (uint32, *Fault) {
	switch kind {
	case MonoInt32:
		return 5, nil
	case MonoAddress:
		return 5, nil
	case MonoFloat64:
		return 9, nil
	case MonoArrayS8:
		return 43, nil
	case MonoChunkS8:
		return 38, nil
	case MonoStringS8:
		return 69, nil
	case MonoObjectS8:
		return 73, nil
	case MonoNamedPropertyS8:
		return 73, nil
	default:
		return 0, newFault(WrongKind, "unknown mono kind: %d", kind)
	}
}

// isValidRegionKind reports whether kind is one of the declared region
// kinds. Kind 0 (an untouched region) is not itself valid; the region's
// readHeader promotes it to RegionEden before any caller observes it.
func isValidRegionKind(kind byte) bool {
	switch kind {
	case RegionEden, RegionSurvivor, RegionTenured, RegionHumongous:
		return true
	default:
		return false
	}
}
