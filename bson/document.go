package bson

import (
	"fmt"
	"strconv"
)

// Document is an ordered, value-typed, otherwise-immutable sequence of
// named Elements. Once NewDocument (or Builder.Build) has returned it the
// element slice is never mutated again; copy-on-write callers should
// build a new Document via a Builder instead of trying to patch one in
// place.
type Document struct {
	elements []Element
	index    map[string]int // first occurrence only
}

// NewDocument builds a sealed Document from the given elements, in order.
// Duplicate names are a builder-time assertion: it panics, matching the
// spec's invariant that keys are unique within a single document at
// construction time. Use NewBuilder, Append and Build to collect elements
// programmatically before sealing.
func NewDocument(elements ...Element) *Document {
	d := &Document{
		elements: elements,
		index:    make(map[string]int, len(elements)),
	}
	for i, e := range elements {
		if _, exists := d.index[e.Name]; exists {
			panic(fmt.Sprintf("bson: duplicate key %q in document builder", e.Name))
		}
		d.index[e.Name] = i
	}
	return d
}

// Builder accumulates elements before sealing them into a Document. It
// exists so callers can build a document across several steps (e.g. a
// command plus optional fields) without repeatedly reallocating a slice.
type Builder struct {
	elements []Element
	seen     map[string]bool
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{seen: make(map[string]bool)}
}

// Append adds an element, panicking on a duplicate name.
func (b *Builder) Append(e Element) *Builder {
	if b.seen[e.Name] {
		panic(fmt.Sprintf("bson: duplicate key %q in document builder", e.Name))
	}
	b.seen[e.Name] = true
	b.elements = append(b.elements, e)
	return b
}

// Build seals the accumulated elements into a Document.
func (b *Builder) Build() *Document {
	return NewDocument(b.elements...)
}

// Len returns the number of elements.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.elements)
}

// ElementAt returns the element at position i, in encoded order.
func (d *Document) ElementAt(i int) Element {
	return d.elements[i]
}

// Elements returns the elements in encoded order. The returned slice
// must not be mutated by callers.
func (d *Document) Elements() []Element {
	if d == nil {
		return nil
	}
	return d.elements
}

// Lookup returns the first element with the given name, honoring the
// first-wins rule required when a byte stream happens to contain a
// duplicate key (§4.1).
func (d *Document) Lookup(name string) (Element, bool) {
	if d == nil {
		return Element{}, false
	}
	i, ok := d.index[name]
	if !ok {
		return Element{}, false
	}
	return d.elements[i], true
}

// NewArray builds an array Document: a document whose keys are the
// decimal indices "0", "1", "2", ... in order.
func NewArray(values ...Element) *Document {
	elements := make([]Element, len(values))
	for i, v := range values {
		v.Name = strconv.Itoa(i)
		elements[i] = v
	}
	return NewDocument(elements...)
}

// Equal reports whether two documents encode the same sequence of named
// values. Subdocuments and arrays are compared structurally.
func Equal(a, b *Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.elements {
		ea, eb := a.elements[i], b.elements[i]
		if ea.Name != eb.Name || ea.Kind != eb.Kind {
			return false
		}
		if !valueEqual(ea.Kind, ea.Value, eb.Value) {
			return false
		}
	}
	return true
}

func valueEqual(k Kind, a, b interface{}) bool {
	switch k {
	case KindDocument, KindArray:
		return Equal(a.(*Document), b.(*Document))
	case KindBinary:
		ba, bb := a.(Binary), b.(Binary)
		if ba.Subtype != bb.Subtype || len(ba.Data) != len(bb.Data) {
			return false
		}
		for i := range ba.Data {
			if ba.Data[i] != bb.Data[i] {
				return false
			}
		}
		return true
	case KindCodeWithScope:
		ca, cb := a.(CodeWithScope), b.(CodeWithScope)
		return ca.Code == cb.Code && Equal(ca.Scope, cb.Scope)
	default:
		return a == b
	}
}
