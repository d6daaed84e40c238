package heap

// StringWrapper, ObjectWrapper, and NamedPropertyWrapper are left
// unimplemented: the guest front end in this module never constructs
// STRING_S8, OBJECT_S8, or NAMED_PROPERTY_S8 monos, and their exact
// field layouts (property chains, string interning) were never pinned
// down precisely enough to encode here. Allocating one of these kinds
// succeeds (the byte layout and size are fixed in monoSize), but the
// wrapper's read/write accessors report Unimplemented so callers fail
// loudly instead of misinterpreting uninitialized payload bytes.

// StringWrapper is a stubbed view over a STRING_S8 mono.
type StringWrapper struct {
	alloc *Allocator
	mono  *Mono
}

func newStringWrapper(a *Allocator, m *Mono) *StringWrapper {
	return &StringWrapper{alloc: a, mono: m}
}

// Address returns the heap address of the string's header byte.
func (s *StringWrapper) Address() Address { return s.mono.Address() }

// Read is unimplemented.
func (s *StringWrapper) Read() (string, *Fault) {
	return "", newFault(Unimplemented, "STRING_S8 read is not implemented")
}

// Write is unimplemented.
func (s *StringWrapper) Write(string) *Fault {
	return newFault(Unimplemented, "STRING_S8 write is not implemented")
}

// ObjectWrapper is a stubbed view over an OBJECT_S8 mono.
type ObjectWrapper struct {
	alloc *Allocator
	mono  *Mono
}

func newObjectWrapper(a *Allocator, m *Mono) *ObjectWrapper {
	return &ObjectWrapper{alloc: a, mono: m}
}

// Address returns the heap address of the object's header byte.
func (o *ObjectWrapper) Address() Address { return o.mono.Address() }

// Get is unimplemented.
func (o *ObjectWrapper) Get(string) (Address, *Fault) {
	return 0, newFault(Unimplemented, "OBJECT_S8 property lookup is not implemented")
}

// Set is unimplemented.
func (o *ObjectWrapper) Set(string, Address) *Fault {
	return newFault(Unimplemented, "OBJECT_S8 property assignment is not implemented")
}

// NamedPropertyWrapper is a stubbed view over a NAMED_PROPERTY_S8 mono.
type NamedPropertyWrapper struct {
	alloc *Allocator
	mono  *Mono
}

func newNamedPropertyWrapper(a *Allocator, m *Mono) *NamedPropertyWrapper {
	return &NamedPropertyWrapper{alloc: a, mono: m}
}

// Address returns the heap address of the property's header byte.
func (p *NamedPropertyWrapper) Address() Address { return p.mono.Address() }

// Name is unimplemented.
func (p *NamedPropertyWrapper) Name() (string, *Fault) {
	return "", newFault(Unimplemented, "NAMED_PROPERTY_S8 name is not implemented")
}

// Value is unimplemented.
func (p *NamedPropertyWrapper) Value() (Address, *Fault) {
	return 0, newFault(Unimplemented, "NAMED_PROPERTY_S8 value is not implemented")
}

// String allocates a STRING_S8 mono and returns its stubbed wrapper.
func (a *Allocator) String(gc func(*Allocator) *Fault) (*StringWrapper, *Fault) {
	m, f := a.Allocate(MonoStringS8, gc)
	if f != nil {
		return nil, f
	}
	return newStringWrapper(a, m), nil
}

// Object allocates an OBJECT_S8 mono and returns its stubbed wrapper.
func (a *Allocator) Object(gc func(*Allocator) *Fault) (*ObjectWrapper, *Fault) {
	m, f := a.Allocate(MonoObjectS8, gc)
	if f != nil {
		return nil, f
	}
	return newObjectWrapper(a, m), nil
}

// NamedProperty allocates a NAMED_PROPERTY_S8 mono and returns its
// stubbed wrapper.
func (a *Allocator) NamedProperty(gc func(*Allocator) *Fault) (*NamedPropertyWrapper, *Fault) {
	m, f := a.Allocate(MonoNamedPropertyS8, gc)
	if f != nil {
		return nil, f
	}
	return newNamedPropertyWrapper(a, m), nil
}
