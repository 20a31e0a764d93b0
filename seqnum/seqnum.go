// Package seqnum implements modular arithmetic over 32-bit TCP sequence
// numbers, as specified by RFC 1982. Every ordering predicate in the
// sender-side transmission control core goes through this package; no
// other code is permitted to compare sequence numbers directly.
package seqnum

// Value is a position in the 32-bit sequence number space. The space wraps
// around at 2**32 and all comparisons between two Values are performed
// modulo that wrap, via a signed 32-bit subtraction.
type Value uint32

// Size is a length (in octets) of a span of sequence number space.
type Size uint32

// LessThan reports whether v precedes w in sequence space (v < w, modulo
// 2**32).
func (v Value) LessThan(w Value) bool {
	return int32(v-w) < 0
}

// LessThanEq reports whether v precedes or equals w in sequence space.
func (v Value) LessThanEq(w Value) bool {
	return v == w || v.LessThan(w)
}

// Add returns v shifted forward by s.
func (v Value) Add(s Size) Value {
	return v + Value(s)
}

// Size returns the span, in octets, from v up to (not including) w.
func (v Value) Size(w Value) Size {
	return Size(w - v)
}

// InRange reports whether v lies in [a, b) modulo 2**32.
func (v Value) InRange(a, b Value) bool {
	return v-a < b-a
}

// InWindow reports whether v lies in the window [first, first+size) modulo
// 2**32.
func (v Value) InWindow(first Value, size Size) bool {
	return v.InRange(first, first.Add(size))
}
