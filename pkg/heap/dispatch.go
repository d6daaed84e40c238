package heap

// Wrapper is the interface every concrete view over a mono satisfies:
// the scalar *Mono itself for INT32/FLOAT64/ADDRESS, and the compound
// wrapper types for ARRAY_S8/CHUNK_S8/STRING_S8/OBJECT_S8/
// NAMED_PROPERTY_S8. Dispatch is what selects among them.
type Wrapper interface {
	Address() Address
}

// Wrap resolves addr to its mono and dispatches to the concrete
// wrapper variant for its kind, per the mono kind table: a tagged
// variant keyed by the kind byte, with dispatch selecting the variant
// on a match over that byte. This is the one place callers should
// re-materialize a wrapper from a bare address instead of hand-rolling
// a FetchMono-plus-switch-on-Kind.
func Wrap(a *Allocator, addr Address) (Wrapper, *Fault) {
	m, f := a.heap.FetchMono(addr)
	if f != nil {
		return nil, f
	}
	return dispatch(a, m)
}

// dispatch selects the concrete wrapper for an already-resolved mono.
// Fails WrongKind for any byte outside the mono kind table.
func dispatch(a *Allocator, m *Mono) (Wrapper, *Fault) {
	switch m.Kind() {
	case MonoInt32, MonoFloat64, MonoAddress:
		return m, nil
	case MonoArrayS8:
		return wrapExistingArray(a, m)
	case MonoChunkS8:
		return newChunkWrapper(a, m), nil
	case MonoStringS8:
		return newStringWrapper(a, m), nil
	case MonoObjectS8:
		return newObjectWrapper(a, m), nil
	case MonoNamedPropertyS8:
		return newNamedPropertyWrapper(a, m), nil
	default:
		return nil, newFault(WrongKind, "no wrapper for mono kind %d", m.Kind())
	}
}
