package heap

// Mono is a view over one tagged record inside a Region. It never owns
// bytes itself; every read/write goes through the owning Region's
// codec at the mono's own offsets, so a Mono stays valid as long as the
// region content it points into isn't relocated (relocation always
// invalidates a Mono; surviving data is re-resolved by its rewritten
// address, e.g. through Heap.FetchMono).
type Mono struct {
	region *Region
	kind   byte

	// beginOffset/endOffset are region-local: [beginOffset, endOffset).
	beginOffset offset
	endOffset   offset

	// beginFrom/endAt/valueFrom are absolute heap addresses.
	beginFrom Address
	endAt     Address
	valueFrom Address
}

// Kind returns the mono's tag byte.
func (m *Mono) Kind() byte { return m.kind }

// Address returns the heap address of the mono's header byte.
func (m *Mono) Address() Address { return m.beginFrom }

// ValueAddress returns the heap address of the mono's first payload
// byte, immediately after the 1-byte header.
func (m *Mono) ValueAddress() Address { return m.valueFrom }

// Size returns the mono's total size in bytes, header included.
func (m *Mono) Size() uint32 { return m.endOffset - m.beginOffset }

// Region returns the region this mono lives in.
func (m *Mono) Region() *Region { return m.region }

// valueOffset is the region-local offset of the mono's first payload
// byte, i.e. beginOffset+1.
func (m *Mono) valueOffset() offset { return m.beginOffset + 1 }

// writeHeader stores the mono's kind byte at beginOffset. Called once
// at allocation time: by Region.CreateMono, and by newArrayWrapper for
// an array's embedded chunk.
func (m *Mono) writeHeader() *Fault {
	return m.region.WriteByte(m.beginOffset, m.kind)
}

// ReadInt32 reads an INT32 mono's payload.
func (m *Mono) ReadInt32() (int32, *Fault) {
	if m.kind != MonoInt32 {
		return 0, newFault(WrongKind, "mono at %d is not INT32", m.beginFrom)
	}
	return m.region.ReadI32(m.valueOffset())
}

// WriteInt32 overwrites an INT32 mono's payload in place.
func (m *Mono) WriteInt32(v int32) *Fault {
	if m.kind != MonoInt32 {
		return newFault(WrongKind, "mono at %d is not INT32", m.beginFrom)
	}
	return m.region.WriteI32(m.valueOffset(), v)
}

// ReadFloat64 reads a FLOAT64 mono's payload.
func (m *Mono) ReadFloat64() (float64, *Fault) {
	if m.kind != MonoFloat64 {
		return 0, newFault(WrongKind, "mono at %d is not FLOAT64", m.beginFrom)
	}
	return m.region.ReadF64(m.valueOffset())
}

// WriteFloat64 overwrites a FLOAT64 mono's payload in place.
func (m *Mono) WriteFloat64(v float64) *Fault {
	if m.kind != MonoFloat64 {
		return newFault(WrongKind, "mono at %d is not FLOAT64", m.beginFrom)
	}
	return m.region.WriteF64(m.valueOffset(), v)
}

// ReadAddress reads an ADDRESS mono's payload.
func (m *Mono) ReadAddress() (Address, *Fault) {
	if m.kind != MonoAddress {
		return 0, newFault(WrongKind, "mono at %d is not ADDRESS", m.beginFrom)
	}
	return m.region.ReadAddress(m.valueOffset())
}

// WriteAddress overwrites an ADDRESS mono's payload in place.
func (m *Mono) WriteAddress(addr Address) *Fault {
	if m.kind != MonoAddress {
		return newFault(WrongKind, "mono at %d is not ADDRESS", m.beginFrom)
	}
	return m.region.WriteAddress(m.valueOffset(), addr)
}
