package scanless

import "fmt"

// Span captures a length of input run as a half-open interval (x…y): a
// start position and the position just behind the end. Every token and
// rule match carries a Span describing which part of the input it covers.
type Span [2]uint64

// From returns the start value of a span.
func (s Span) From() uint64 { return s[0] }

// To returns the end value of a span.
func (s Span) To() uint64 { return s[1] }

// Len returns the length of (x…y).
func (s Span) Len() uint64 { return s[1] - s[0] }

// IsNull is a predicate for the zero span.
func (s Span) IsNull() bool { return s == Span{} }

// Extend widens s to also cover other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
