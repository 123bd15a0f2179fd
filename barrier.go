package scanless

import "sort"

// VirtualToken is a marker emitted by a BarrierTokenizer pre-pass: it does
// not consume characters at the token-pattern level, it occupies a slot in
// a virtual stream parallel to the character stream (spec §3, §4.5).
type VirtualToken struct {
	TokenID int32
	Start   uint64
	Length  uint64
	Ordinal uint32
}

// BarrierTokenizer pre-scans the input once, at parse start, and produces
// a totally ordered, non-overlapping list of virtual tokens (spec §3).
// The built-in implementation lives in package indent; grammars that do
// not need barrier tokens simply omit one.
type BarrierTokenizer interface {
	Tokenize(input string) ([]VirtualToken, error)
}

// BarrierTokenMap is the compiled, queryable form of a tokenizer's output
// (spec §3, §4.5).
type BarrierTokenMap struct {
	tokens []VirtualToken // sorted by (Start, Ordinal)
}

// NewBarrierTokenMap builds a map from an already-produced (and already
// sorted, per the BarrierTokenizer contract) virtual token list.
func NewBarrierTokenMap(tokens []VirtualToken) *BarrierTokenMap {
	sorted := make([]VirtualToken, len(tokens))
	copy(sorted, tokens)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Ordinal < sorted[j].Ordinal
	})
	return &BarrierTokenMap{tokens: sorted}
}

// EmptyBarrierTokenMap is used for grammars with no barrier tokenizer.
func EmptyBarrierTokenMap() *BarrierTokenMap { return &BarrierTokenMap{} }

// Lookup returns the virtual token occupying slot `passedCount` if and
// only if it starts exactly at position (spec §3:
// "lookup(position, passed_count) -> Option<VirtualToken>").
func (m *BarrierTokenMap) Lookup(position uint64, passedCount uint32) (VirtualToken, bool) {
	if m == nil || int(passedCount) >= len(m.tokens) {
		return VirtualToken{}, false
	}
	vt := m.tokens[passedCount]
	if vt.Start != position {
		return VirtualToken{}, false
	}
	return vt, true
}

// NextBarrierPosition returns the start position of the next
// not-yet-passed virtual token at or after position, or -1 (represented
// as ^uint64(0)) if there is none. Real tokens are constrained to not
// cross this position (spec §4.5).
func (m *BarrierTokenMap) NextBarrierPosition(position uint64, passedCount uint32) uint64 {
	if m == nil {
		return noBarrier
	}
	for i := int(passedCount); i < len(m.tokens); i++ {
		if m.tokens[i].Start >= position {
			return m.tokens[i].Start
		}
	}
	return noBarrier
}

// noBarrier is the sentinel "no barrier ahead" position.
const noBarrier = ^uint64(0)

// restrictedBarrier computes the effective barrier position a token match
// must not cross, given the rule-imposed maxPos and the barrier map
// (spec §4.5: "real tokens are constrained to not cross pos'").
func restrictedBarrier(maxPos uint64, m *BarrierTokenMap, position uint64, passedCount uint32) uint64 {
	next := m.NextBarrierPosition(position, passedCount)
	if next == noBarrier || next > maxPos {
		return maxPos
	}
	return next
}
