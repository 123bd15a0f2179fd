package scanless

import "regexp"

// TokenDef is the mutable, name-addressed description of one token pattern
// before compilation (spec §3, §4.1). It mirrors TokenPattern field for
// field, except that every cross-reference to another token is spelled as
// a name to be resolved by Compile rather than an already-resolved integer
// ID. TokenDef is the input representation; TokenPattern is the compiled
// one. Building TokenDefs by hand is verbose on purpose — a fluent facade
// on top of this is explicitly out of scope (see SPEC_FULL.md).
type TokenDef struct {
	Name    string
	Aliases []string
	Kind    TokenKind

	ErrorHandlingMode ErrorHandling

	Literal    string
	Char       rune
	Comparison Comparison
	Choices    []string // LiteralChoice / KeywordChoice literals

	ProhibitedChar func(rune) bool

	CharPred func(rune) bool
	MinCount int
	MaxCount int

	StartPred func(rune) bool
	ContPred  func(rune) bool
	MinLen    int
	MaxLen    int

	NumKind     NumberKind
	NumFlags    NumberFlags
	DefaultBase int
	BaseMapping map[rune]int
	GroupSep    rune

	Regex         *regexp.Regexp
	StartAnchored bool

	Escaping    EscapingStrategy
	AllowEmpty  bool
	ConsumeStop bool

	Children               []string // child token names, order significant
	Passage                PassageFn
	AllowTrailingSeparator bool
	IncludeSeparatorText   bool
	MapFunc                MapFn
	ReturnValue            interface{}
	FailIf                 FailIfFn
	FailMessage            string
	TrimStart              bool
	TrimEnd                bool
	Cond                   CondFn
	ThenRef                string
	ElseRef                string // "" == fail when false
	StopRef                string // TextUntil stop token name
	FailOnEOF              bool

	InitFlags InitFlag
}

// LocalSettingsDef is LocalSettings with name-addressed references,
// resolved by Compile.
type LocalSettingsDef struct {
	SkipRuleRef           string
	SkipUseMode           UseMode
	SkippingStrategyRef   string
	SkippingUseMode       UseMode
	ErrorHandlingMode     ErrorHandling
	ErrorHandlingUseMode  UseMode
	IgnoreBarriers        bool
	IgnoreBarriersUseMode UseMode
}

// RuleDef is the mutable, name-addressed description of one parser rule
// before compilation (spec §3, §4.1), the rule-level analogue of TokenDef.
type RuleDef struct {
	Name    string
	Aliases []string
	Kind    RuleKind

	TokenRef string // RuleToken

	Children []string // child rule names; Sequence/Choice/Optional(1)/Repeat(1)/SeparatedRepeat(item,sep)

	MinCount               int
	MaxCount               int
	AllowTrailingSeparator bool
	IncludeSeparators      bool

	Custom CustomFn

	Settings          LocalSettingsDef
	ErrorRecoveryRef  string
	ValueFactory      ValueFactory

	RequireEOF bool // honored for the rule a Parse or ParseRule call starts at

	InitFlags InitFlag
}

// SkipStrategyDef names the rule a SkipStrategy delegates to, if any.
type SkipStrategyDef struct {
	Name    string
	Kind    SkipKind
	RuleRef string // "" for SkipNone/SkipWhitespacesBuiltin
}

// ErrorRecoveryDef names the anchor/stop rules an ErrorRecovery delegates
// to, if any.
type ErrorRecoveryDef struct {
	Name      string
	Kind      RecoveryKind
	AnchorRef string
	StopRef   string
	Repeat    bool
}

// Grammar is the full, still-uncompiled description of a language (spec
// §3 "Buildable"): a flat, name-addressed collection of token and rule
// definitions plus the auxiliary tables (skip strategies, error
// recoveries) they reference, and the name of the rule a parse starts at.
//
// Two passes resolve this into a Parser: Compile first registers every
// name (permitting forward and cyclic references between rules), then
// links, dedups and analyzes the result (spec §4.1).
type Grammar struct {
	Tokens          []TokenDef
	Rules           []RuleDef
	SkipStrategies  []SkipStrategyDef
	ErrorRecoveries []ErrorRecoveryDef
	BarrierTokenizer BarrierTokenizer

	MainRule string
}
