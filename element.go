package scanless

import (
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
)

// InitFlag controls what a compiled element's match function is wrapped
// with during Compile's initialize step (spec §4.1 step 4): memoization,
// stack-trace bookkeeping, or walk-trace recording. Flags are additive and
// resolved once at compile time, never per invocation.
type InitFlag uint32

const (
	// FlagEnableMemoization caches (ruleID, position, passedBarriers) ->
	// result, see Context.cacheGet/cachePut and spec §4.7.
	FlagEnableMemoization InitFlag = 1 << iota
	// FlagStackTrace pushes/pops a runtime.StackFrame around every
	// invocation of the element, building the diagnostic call stack.
	FlagStackTrace
	// FlagWalkTrace records every evaluation (success or failure) of a
	// rule into the context's walk trace, when Compile was given
	// WithWalkTrace. Memoized cache hits and token patterns are not
	// recorded.
	FlagWalkTrace
	// FlagFirstCharacterMatch tells a token Choice combinator to skip
	// alternatives whose first-character set is deterministic and does not
	// contain the next input character; the remaining alternatives are
	// still tried in order (spec §4.2 Choice).
	FlagFirstCharacterMatch
)

// Has reports whether f includes other.
func (f InitFlag) Has(other InitFlag) bool { return f&other != 0 }

// ErrorHandling is the per-element error-handling mode of spec §7.
type ErrorHandling int8

const (
	// ErrorDefault records a failure into the context's error list.
	ErrorDefault ErrorHandling = iota
	// ErrorNoRecord suppresses the failure entirely.
	ErrorNoRecord
	// ErrorThrow records a rule failure with the message "grammar
	// assertion failed", recording it as ErrorDefault would. It does not
	// stop the parse: enclosing rules, error recovery and the rest of the
	// parse go on as under ErrorDefault.
	ErrorThrow
)

func (e ErrorHandling) String() string {
	switch e {
	case ErrorNoRecord:
		return "no-record"
	case ErrorThrow:
		return "throw"
	default:
		return "default"
	}
}

func runeComparator(a, b interface{}) int {
	ar, br := a.(rune), b.(rune)
	switch {
	case ar < br:
		return -1
	case ar > br:
		return 1
	default:
		return 0
	}
}

// FirstCharSet is the set of characters a token pattern may legally begin
// matching with (spec §3: TokenPattern.first_chars). Backed by an ordered
// tree set, as the teacher's grammar-analysis code (lr/tables.go) uses
// gods/sets/treeset for comparable small sets that need deterministic
// iteration (e.g. when rendering diagnostics).
type FirstCharSet struct {
	set *treeset.Set
}

// NewFirstCharSet creates a set containing the given runes.
func NewFirstCharSet(runes ...rune) *FirstCharSet {
	s := &FirstCharSet{set: treeset.NewWith(runeComparator)}
	for _, r := range runes {
		s.set.Add(r)
	}
	return s
}

// Add inserts r into the set.
func (s *FirstCharSet) Add(r rune) { s.set.Add(r) }

// Contains reports whether r is a member.
func (s *FirstCharSet) Contains(r rune) bool { return s.set.Contains(r) }

// Empty reports whether the set has no members. Per spec §3, an empty
// first-char set means the token is not first-character deterministic.
func (s *FirstCharSet) Empty() bool { return s.set == nil || s.set.Empty() }

// Union returns a new set containing the members of both s and other.
func (s *FirstCharSet) Union(other *FirstCharSet) *FirstCharSet {
	out := NewFirstCharSet()
	if s != nil {
		for _, v := range s.set.Values() {
			out.set.Add(v)
		}
	}
	if other != nil {
		for _, v := range other.set.Values() {
			out.set.Add(v)
		}
	}
	return out
}

// Runes returns the set's members in ascending order.
func (s *FirstCharSet) Runes() []rune {
	if s == nil || s.set == nil {
		return nil
	}
	vals := s.set.Values()
	out := make([]rune, len(vals))
	for i, v := range vals {
		out[i] = v.(rune)
	}
	return out
}

// ParserElement is the common base embedded by both TokenPattern and
// ParserRule (spec §3): a stable integer ID, an ordered set of aliases
// (names the element is known by in the compiled grammar), and the
// compile-time init flags controlling wrapping behavior.
type ParserElement struct {
	ID        int32
	Aliases   *treeset.Set // of string, insertion order not required: sorted for determinism
	InitFlags InitFlag
}

func newParserElement(id int32) ParserElement {
	return ParserElement{
		ID:      id,
		Aliases: treeset.NewWithStringComparator(),
	}
}

// AddAlias registers name as an additional name for this element.
func (e *ParserElement) AddAlias(name string) {
	if name != "" {
		e.Aliases.Add(name)
	}
}

// PrimaryName returns the first alias in sorted order, or a synthetic
// "#<id>" if the element has no aliases (anonymous elements, e.g. ones
// produced by a fluent builder's combinators).
func (e *ParserElement) PrimaryName() string {
	if e.Aliases != nil && !e.Aliases.Empty() {
		return e.Aliases.Values()[0].(string)
	}
	return fmt.Sprintf("#%d", e.ID)
}

// HasFlag reports whether f is set on this element.
func (e *ParserElement) HasFlag(f InitFlag) bool { return e.InitFlags.Has(f) }
