package scanless

import (
	"regexp"

	"github.com/scanlessgo/scanless/trie"
)

// TokenKind tags which variant a TokenPattern is. Per spec §9 this
// replaces a class hierarchy: TokenPattern is a single struct, Kind picks
// which fields are meaningful, and Match dispatches with a plain switch
// instead of a vtable.
type TokenKind int8

const (
	// --- leaf variants (spec §4.2) ---
	TokLiteralChar TokenKind = iota
	TokLiteral
	TokLiteralChoice
	TokKeywordChoice
	TokCharacter
	TokRepeatCharacters
	TokIdentifier
	TokNumber
	TokIntegerNumber
	TokRegex
	TokEscapedText
	TokWhitespaces
	TokSpaces
	TokNewline
	TokEOF
	TokAllText
	// TokBarrier marks a token pattern that is only ever satisfied through
	// a BarrierTokenMap lookup (spec §4.5), never by matching characters —
	// Match always fails it directly. Distinct barrier markers (INDENT vs
	// DEDENT vs NEWLINE) carry no other distinguishing fields, so give each
	// a distinct Literal purely to keep Compile's structural dedup from
	// collapsing them onto the same token ID.
	TokBarrier

	// --- combinator variants over child token IDs (spec §4.2) ---
	TokSequence
	TokChoice
	TokOptional
	TokRepeat
	TokSeparatedRepeat
	TokBetween
	TokFirst
	TokSecond
	TokMap
	TokReturn
	TokFailIf
	TokCaptureText
	TokIf
	TokSkipWhitespaces
	TokTextUntil
)

// Comparison picks case sensitivity for literal-style matches.
type Comparison int8

const (
	CaseSensitive Comparison = iota
	CaseInsensitive
)

// NumberKind is the target representation for Number/IntegerNumber tokens.
type NumberKind int8

const (
	NumberInt64 NumberKind = iota
	NumberUint64
	NumberFloat64
)

// NumberFlags controls optional numeric syntax.
type NumberFlags uint8

const (
	NumberAllowSign NumberFlags = 1 << iota
	NumberAllowScientific
	NumberAllowGroupSeparator
)

func (f NumberFlags) has(o NumberFlags) bool { return f&o != 0 }

// EscapingStrategy backs the EscapedText token: TryEscape recognizes an
// escape sequence at pos and returns its length plus its replacement
// text; TryStop recognizes the (unescaped) terminator at pos and returns
// its length, or 0 if none matches there.
type EscapingStrategy interface {
	TryEscape(input string, pos int) (length int, replacement string)
	TryStop(input string, pos int) (length int)
}

// RegexValue is the intermediate value produced by a Regex token on
// platforms with no native "Match object" (spec §9 Open Question, pinned
// in DESIGN.md).
type RegexValue struct {
	Text   string
	Groups map[string]string
}

// PassageFn combines the per-child intermediate values of a Sequence into
// one value.
type PassageFn func(childValues []interface{}) interface{}

// MapFn transforms a value.
type MapFn func(interface{}) interface{}

// FailIfFn inspects a value and, if it returns true, fails the match with
// the accompanying message.
type FailIfFn func(interface{}) (shouldFail bool, message string)

// CondFn evaluates the parser parameter for an If token.
type CondFn func(parameter interface{}) bool

// TokenPattern is a leaf or combinator matcher over raw characters,
// producing a ParsedElement (spec §3, §4.2). All cross-references to
// other tokens are by integer ID into the owning Parser's token table
// (spec §9: "use integer IDs into two tables").
type TokenPattern struct {
	ParserElement
	Kind TokenKind

	FirstChars             *FirstCharSet
	FirstCharDeterministic bool
	IsOptional             bool
	ErrorHandlingMode      ErrorHandling
	DefaultValueFactory    ValueFactory

	// --- leaf fields ---
	Literal    string
	Char       rune
	Comparison Comparison
	Choices    *trie.Trie // LiteralChoice / KeywordChoice

	ProhibitedChar func(rune) bool // KeywordChoice

	CharPred func(rune) bool // Character / RepeatCharacters / Identifier(cont)
	MinCount int             // RepeatCharacters / Repeat / SeparatedRepeat
	MaxCount int             // 0 == unbounded

	StartPred func(rune) bool // Identifier
	ContPred  func(rune) bool // Identifier
	MinLen    int             // Identifier
	MaxLen    int             // Identifier, 0 == unbounded

	NumKind     NumberKind
	NumFlags    NumberFlags
	DefaultBase int               // IntegerNumber
	BaseMapping map[rune]int      // IntegerNumber: prefix char -> base
	GroupSep    rune              // 0 == none

	Regex         *regexp.Regexp
	StartAnchored bool

	Escaping     EscapingStrategy
	AllowEmpty   bool // EscapedText / TextUntil
	ConsumeStop  bool // EscapedText / TextUntil

	// --- combinator fields ---
	Children    []int32 // child token IDs, order significant
	Passage     PassageFn
	AllowTrailingSeparator bool
	IncludeSeparatorText   bool
	MapFunc     MapFn
	ReturnValue interface{}
	FailIf      FailIfFn
	FailMessage string
	TrimStart   bool
	TrimEnd     bool
	Cond        CondFn
	ThenID      int32
	ElseID      int32 // -1 == fail when false
	StopID      int32 // TextUntil stop token id
	FailOnEOF   bool  // TextUntil
}

// tokenResolved groups pointers into the owning Parser's token table for a
// pattern's children and then/else/stop targets. Compile does not fill it
// and no matcher reads it; matching looks children up by ID in the table.
type tokenResolved struct {
	children []*TokenPattern
	then     *TokenPattern
	els      *TokenPattern
	stop     *TokenPattern
}

// Match implements the uniform token contract of spec §4.2:
//
//	match(input, pos, barrier_pos, parameter, want_value, &furthest) -> ParsedElement
//
// 0 <= pos <= barrier_pos <= len(input) is a precondition; callers
// (TokenParserRule, combinators) are responsible for establishing it.
func (t *TokenPattern) Match(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	switch {
	case t.Kind <= TokBarrier:
		return t.matchLeaf(input, pos, barrierPos, wantValue, furthest)
	default:
		return t.matchCombinator(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	}
}

func (t *TokenPattern) fail(pos uint64, message string, furthest *FurthestError) ParsedElement {
	if furthest != nil {
		furthest.Update(pos, t.ID, t.PrimaryName(), message, t.ErrorHandlingMode == ErrorNoRecord)
	}
	return FailElement
}
