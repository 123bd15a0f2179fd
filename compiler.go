package scanless

import (
	"fmt"
	"unicode"

	"github.com/cnf/structhash"
	"github.com/scanlessgo/scanless/trie"
)

// CompileOption configures Compile (spec §4.1's "compile-time options").
type CompileOption func(*compileConfig)

type compileConfig struct {
	walkTraceLimit int
	defaultFlags   InitFlag
}

func defaultCompileConfig() compileConfig {
	return compileConfig{
		walkTraceLimit: 0,
		defaultFlags:   FlagStackTrace,
	}
}

// WithWalkTrace enables walk-trace recording, bounded to the given number
// of retained entries (spec §7, §9). Only rules carrying FlagWalkTrace
// record into it.
func WithWalkTrace(limit int) CompileOption {
	return func(c *compileConfig) { c.walkTraceLimit = limit }
}

// WithDefaultFlags sets the InitFlag bits that Compile ORs into every
// element's own InitFlags.
func WithDefaultFlags(flags InitFlag) CompileOption {
	return func(c *compileConfig) { c.defaultFlags = flags }
}

// tokenDedupKey is the structural-identity projection of a TokenDef used
// for the compile-time dedup pass (spec §4.1 step 2, spec §9 "two flat
// deduplicated tables"). Function-valued fields (predicates, map/fail-if
// callbacks) cannot be meaningfully content-hashed; HasCallback records
// that at least one of them is set, and dedupTokens never merges a def
// whose HasCallback is true, so two otherwise identical token defs that
// differ only in such a callback stay distinct.
type tokenDedupKey struct {
	Kind                   TokenKind
	Literal                string
	Char                   rune
	Comparison             Comparison
	Choices                []string
	MinCount, MaxCount     int
	MinLen, MaxLen         int
	NumKind                NumberKind
	NumFlags               NumberFlags
	DefaultBase            int
	GroupSep               rune
	RegexPattern           string
	StartAnchored          bool
	AllowEmpty, ConsumeStop bool
	Children               []string
	AllowTrailingSeparator bool
	IncludeSeparatorText   bool
	TrimStart, TrimEnd     bool
	ThenRef, ElseRef, StopRef string
	FailOnEOF              bool
	HasCallback            bool // set when any func field is non-nil; such defs are never merged
}

func tokenKey(td *TokenDef) tokenDedupKey {
	pattern := ""
	if td.Regex != nil {
		pattern = td.Regex.String()
	}
	return tokenDedupKey{
		Kind: td.Kind, Literal: td.Literal, Char: td.Char, Comparison: td.Comparison,
		Choices: td.Choices, MinCount: td.MinCount, MaxCount: td.MaxCount,
		MinLen: td.MinLen, MaxLen: td.MaxLen, NumKind: td.NumKind, NumFlags: td.NumFlags,
		DefaultBase: td.DefaultBase, GroupSep: td.GroupSep, RegexPattern: pattern,
		StartAnchored: td.StartAnchored, AllowEmpty: td.AllowEmpty, ConsumeStop: td.ConsumeStop,
		Children: td.Children, AllowTrailingSeparator: td.AllowTrailingSeparator,
		IncludeSeparatorText: td.IncludeSeparatorText, TrimStart: td.TrimStart, TrimEnd: td.TrimEnd,
		ThenRef: td.ThenRef, ElseRef: td.ElseRef, StopRef: td.StopRef, FailOnEOF: td.FailOnEOF,
		HasCallback: td.ProhibitedChar != nil || td.CharPred != nil || td.StartPred != nil ||
			td.ContPred != nil || td.Escaping != nil || td.Passage != nil || td.MapFunc != nil ||
			td.FailIf != nil || td.Cond != nil,
	}
}

type ruleDedupKey struct {
	Kind                   RuleKind
	TokenRef               string
	Children               []string
	MinCount, MaxCount     int
	AllowTrailingSeparator bool
	IncludeSeparators      bool
	RequireEOF             bool
	ErrorRecoveryRef       string
	Settings               LocalSettingsDef
	HasCallback            bool
}

func ruleKey(rd *RuleDef) ruleDedupKey {
	return ruleDedupKey{
		Kind: rd.Kind, TokenRef: rd.TokenRef, Children: rd.Children,
		MinCount: rd.MinCount, MaxCount: rd.MaxCount,
		AllowTrailingSeparator: rd.AllowTrailingSeparator, IncludeSeparators: rd.IncludeSeparators,
		RequireEOF: rd.RequireEOF, ErrorRecoveryRef: rd.ErrorRecoveryRef, Settings: rd.Settings,
		HasCallback: rd.Custom != nil || rd.ValueFactory != nil,
	}
}

// Compile implements the two-pass grammar build of spec §4.1: pass one
// registers every name (so forward and cyclic references resolve), pass
// two deduplicates structurally identical definitions via a structural
// hash, resolves every name reference to an integer ID, and computes
// first-character sets bottom-up. A non-nil error here is always a
// GrammarBuild-class failure — it never occurs once a Parser has been
// returned.
func Compile(g *Grammar, opts ...CompileOption) (*Parser, error) {
	tracer().Debugf("compiling grammar: %d tokens, %d rules", len(g.Tokens), len(g.Rules))
	cfg := defaultCompileConfig()
	for _, o := range opts {
		o(&cfg)
	}

	tokenNameToID, tokenDefs, err := dedupTokens(g.Tokens)
	if err != nil {
		return nil, err
	}
	ruleNameToID, ruleDefs, err := dedupRules(g.Rules)
	if err != nil {
		return nil, err
	}

	skipNameToID := make(map[string]int32, len(g.SkipStrategies))
	for i, sd := range g.SkipStrategies {
		if sd.Name == "" {
			return nil, fmt.Errorf("scanless: compile: skip strategy %d has no name", i)
		}
		if _, dup := skipNameToID[sd.Name]; dup {
			return nil, fmt.Errorf("scanless: compile: duplicate skip strategy name %q", sd.Name)
		}
		skipNameToID[sd.Name] = int32(i)
	}
	recoveryNameToID := make(map[string]int32, len(g.ErrorRecoveries))
	for i, rd := range g.ErrorRecoveries {
		if rd.Name == "" {
			return nil, fmt.Errorf("scanless: compile: error recovery %d has no name", i)
		}
		if _, dup := recoveryNameToID[rd.Name]; dup {
			return nil, fmt.Errorf("scanless: compile: duplicate error recovery name %q", rd.Name)
		}
		recoveryNameToID[rd.Name] = int32(i)
	}

	tokens, err := buildTokens(tokenDefs, tokenNameToID, cfg)
	if err != nil {
		return nil, err
	}
	skipStrategies, err := buildSkipStrategies(g.SkipStrategies, ruleNameToID)
	if err != nil {
		return nil, err
	}
	recoveries, err := buildRecoveries(g.ErrorRecoveries, ruleNameToID)
	if err != nil {
		return nil, err
	}
	rules, err := buildRules(ruleDefs, ruleNameToID, tokenNameToID, skipNameToID, recoveryNameToID, cfg)
	if err != nil {
		return nil, err
	}

	computeTokenFirstChars(tokens)
	computeRuleFirstChars(rules, tokens)

	mainID, ok := ruleNameToID[g.MainRule]
	if !ok {
		return nil, fmt.Errorf("scanless: compile: unknown main rule %q", g.MainRule)
	}

	tracer().Debugf("compiled grammar: main rule %q (id %d)", g.MainRule, mainID)
	return &Parser{
		tokens:           &tokenTable{tokens: tokens},
		rules:            &ruleTable{rules: rules},
		skipStrategies:   &skipTable{strategies: skipStrategies},
		recoveries:       &recoveryTable{recoveries: recoveries},
		barrierTokenizer: g.BarrierTokenizer,
		walkTraceLimit:   cfg.walkTraceLimit,
		mainRuleID:       mainID,
		ruleNameToID:     ruleNameToID,
		tokenNameToID:    tokenNameToID,
	}, nil
}

// dedupTokens runs pass 1 (name registration) and pass 2's dedup step for
// tokens: structurally identical TokenDefs (per tokenKey) collapse onto
// one canonical definition, and every one of their names becomes an alias
// of it.
func dedupTokens(defs []TokenDef) (map[string]int32, []*TokenDef, error) {
	nameToID := make(map[string]int32, len(defs))
	hashToID := make(map[string]int32, len(defs))
	var ordered []*TokenDef
	for i := range defs {
		td := &defs[i]
		if td.Name == "" {
			return nil, nil, fmt.Errorf("scanless: compile: token %d has no name", i)
		}
		if _, dup := nameToID[td.Name]; dup {
			return nil, nil, fmt.Errorf("scanless: compile: duplicate token name %q", td.Name)
		}
		key := tokenKey(td)
		h, err := structhash.Hash(key, 1)
		if err != nil {
			return nil, nil, fmt.Errorf("scanless: compile: hashing token %q: %w", td.Name, err)
		}
		if id, ok := hashToID[h]; ok && !key.HasCallback {
			nameToID[td.Name] = id
			ordered[id].Aliases = append(ordered[id].Aliases, td.Name)
			continue
		}
		id := int32(len(ordered))
		hashToID[h] = id
		nameToID[td.Name] = id
		ordered = append(ordered, td)
	}
	return nameToID, ordered, nil
}

func dedupRules(defs []RuleDef) (map[string]int32, []*RuleDef, error) {
	nameToID := make(map[string]int32, len(defs))
	hashToID := make(map[string]int32, len(defs))
	var ordered []*RuleDef
	for i := range defs {
		rd := &defs[i]
		if rd.Name == "" {
			return nil, nil, fmt.Errorf("scanless: compile: rule %d has no name", i)
		}
		if _, dup := nameToID[rd.Name]; dup {
			return nil, nil, fmt.Errorf("scanless: compile: duplicate rule name %q", rd.Name)
		}
		h, err := structhash.Hash(ruleKey(rd), 1)
		if err != nil {
			return nil, nil, fmt.Errorf("scanless: compile: hashing rule %q: %w", rd.Name, err)
		}
		if id, ok := hashToID[h]; ok {
			nameToID[rd.Name] = id
			ordered[id].Aliases = append(ordered[id].Aliases, rd.Name)
			continue
		}
		id := int32(len(ordered))
		hashToID[h] = id
		nameToID[rd.Name] = id
		ordered = append(ordered, rd)
	}
	return nameToID, ordered, nil
}

func buildTokens(defs []*TokenDef, nameToID map[string]int32, cfg compileConfig) ([]*TokenPattern, error) {
	tokens := make([]*TokenPattern, len(defs))
	for i, td := range defs {
		tp := &TokenPattern{
			ParserElement:          newParserElement(int32(i)),
			Kind:                   td.Kind,
			ErrorHandlingMode:      td.ErrorHandlingMode,
			Literal:                td.Literal,
			Char:                   td.Char,
			Comparison:             td.Comparison,
			ProhibitedChar:         td.ProhibitedChar,
			CharPred:               td.CharPred,
			MinCount:               td.MinCount,
			MaxCount:               td.MaxCount,
			StartPred:              td.StartPred,
			ContPred:               td.ContPred,
			MinLen:                 td.MinLen,
			MaxLen:                 td.MaxLen,
			NumKind:                td.NumKind,
			NumFlags:               td.NumFlags,
			DefaultBase:            td.DefaultBase,
			BaseMapping:            td.BaseMapping,
			GroupSep:               td.GroupSep,
			Regex:                  td.Regex,
			StartAnchored:          td.StartAnchored,
			Escaping:               td.Escaping,
			AllowEmpty:             td.AllowEmpty,
			ConsumeStop:            td.ConsumeStop,
			Passage:                td.Passage,
			AllowTrailingSeparator: td.AllowTrailingSeparator,
			IncludeSeparatorText:   td.IncludeSeparatorText,
			MapFunc:                td.MapFunc,
			ReturnValue:            td.ReturnValue,
			FailIf:                 td.FailIf,
			FailMessage:            td.FailMessage,
			TrimStart:              td.TrimStart,
			TrimEnd:                td.TrimEnd,
			Cond:                   td.Cond,
			FailOnEOF:              td.FailOnEOF,
			ThenID:                 -1,
			ElseID:                 -1,
			StopID:                 -1,
		}
		tp.InitFlags = td.InitFlags | cfg.defaultFlags
		tp.AddAlias(td.Name)
		for _, a := range td.Aliases {
			tp.AddAlias(a)
		}
		if len(td.Choices) > 0 {
			t := trie.New(trie.CaseSensitive)
			if td.Comparison == CaseInsensitive {
				t = trie.New(trie.CaseInsensitiveFold)
			}
			for _, c := range td.Choices {
				t.Add(c, c)
			}
			tp.Choices = t
		}
		tokens[i] = tp
	}
	for i, td := range defs {
		tp := tokens[i]
		if len(td.Children) > 0 {
			tp.Children = make([]int32, len(td.Children))
			for ci, cn := range td.Children {
				id, ok := nameToID[cn]
				if !ok {
					return nil, fmt.Errorf("scanless: compile: token %q references unknown child token %q", td.Name, cn)
				}
				tp.Children[ci] = id
			}
		}
		if td.ThenRef != "" {
			id, ok := nameToID[td.ThenRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: token %q references unknown then-token %q", td.Name, td.ThenRef)
			}
			tp.ThenID = id
		}
		if td.ElseRef != "" {
			id, ok := nameToID[td.ElseRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: token %q references unknown else-token %q", td.Name, td.ElseRef)
			}
			tp.ElseID = id
		}
		if td.StopRef != "" {
			id, ok := nameToID[td.StopRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: token %q references unknown stop-token %q", td.Name, td.StopRef)
			}
			tp.StopID = id
		}
	}
	return tokens, nil
}

func buildSkipStrategies(defs []SkipStrategyDef, ruleNameToID map[string]int32) ([]*SkipStrategy, error) {
	out := make([]*SkipStrategy, len(defs))
	for i, sd := range defs {
		rid := int32(-1)
		if sd.RuleRef != "" {
			id, ok := ruleNameToID[sd.RuleRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: skip strategy %q references unknown rule %q", sd.Name, sd.RuleRef)
			}
			rid = id
		}
		ss := &SkipStrategy{ParserElement: newParserElement(int32(i)), Kind: sd.Kind, RuleID: rid}
		ss.AddAlias(sd.Name)
		out[i] = ss
	}
	return out, nil
}

func buildRecoveries(defs []ErrorRecoveryDef, ruleNameToID map[string]int32) ([]*ErrorRecovery, error) {
	out := make([]*ErrorRecovery, len(defs))
	for i, rd := range defs {
		anchor, stop := int32(-1), int32(-1)
		if rd.AnchorRef != "" {
			id, ok := ruleNameToID[rd.AnchorRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: error recovery %q references unknown anchor rule %q", rd.Name, rd.AnchorRef)
			}
			anchor = id
		}
		if rd.StopRef != "" {
			id, ok := ruleNameToID[rd.StopRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: error recovery %q references unknown stop rule %q", rd.Name, rd.StopRef)
			}
			stop = id
		}
		er := &ErrorRecovery{ParserElement: newParserElement(int32(i)), Kind: rd.Kind, AnchorRuleID: anchor, StopRuleID: stop, Repeat: rd.Repeat}
		er.AddAlias(rd.Name)
		out[i] = er
	}
	return out, nil
}

func buildRules(defs []*RuleDef, ruleNameToID, tokenNameToID, skipNameToID, recoveryNameToID map[string]int32, cfg compileConfig) ([]*ParserRule, error) {
	rules := make([]*ParserRule, len(defs))
	for i, rd := range defs {
		r := &ParserRule{
			ParserElement:          newParserElement(int32(i)),
			Kind:                   rd.Kind,
			MinCount:               rd.MinCount,
			MaxCount:               rd.MaxCount,
			AllowTrailingSeparator: rd.AllowTrailingSeparator,
			IncludeSeparators:      rd.IncludeSeparators,
			Custom:                 rd.Custom,
			ParsedValueFactory:     rd.ValueFactory,
			RequireEOF:             rd.RequireEOF,
			ErrorRecoveryID:        -1,
		}
		r.InitFlags = rd.InitFlags | cfg.defaultFlags
		r.AddAlias(rd.Name)
		for _, a := range rd.Aliases {
			r.AddAlias(a)
		}
		r.Settings = LocalSettings{
			SkipRuleID:            -1,
			SkipUseMode:           rd.Settings.SkipUseMode,
			SkippingUseMode:       rd.Settings.SkippingUseMode,
			ErrorHandlingMode:     rd.Settings.ErrorHandlingMode,
			ErrorHandlingUseMode:  rd.Settings.ErrorHandlingUseMode,
			IgnoreBarriers:        rd.Settings.IgnoreBarriers,
			IgnoreBarriersUseMode: rd.Settings.IgnoreBarriersUseMode,
		}
		if rd.Settings.SkipRuleRef != "" {
			id, ok := ruleNameToID[rd.Settings.SkipRuleRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: rule %q settings reference unknown skip rule %q", rd.Name, rd.Settings.SkipRuleRef)
			}
			r.Settings.SkipRuleID = id
		}
		r.Settings.SkippingStrategyID = -1
		if rd.Settings.SkippingStrategyRef != "" {
			id, ok := skipNameToID[rd.Settings.SkippingStrategyRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: rule %q settings reference unknown skip strategy %q", rd.Name, rd.Settings.SkippingStrategyRef)
			}
			r.Settings.SkippingStrategyID = id
		}
		if rd.ErrorRecoveryRef != "" {
			id, ok := recoveryNameToID[rd.ErrorRecoveryRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: rule %q references unknown error recovery %q", rd.Name, rd.ErrorRecoveryRef)
			}
			r.ErrorRecoveryID = id
		}
		rules[i] = r
	}
	for i, rd := range defs {
		r := rules[i]
		if rd.TokenRef != "" {
			id, ok := tokenNameToID[rd.TokenRef]
			if !ok {
				return nil, fmt.Errorf("scanless: compile: rule %q references unknown token %q", rd.Name, rd.TokenRef)
			}
			r.TokenID = id
		}
		if len(rd.Children) > 0 {
			r.Children = make([]int32, len(rd.Children))
			for ci, cn := range rd.Children {
				id, ok := ruleNameToID[cn]
				if !ok {
					return nil, fmt.Errorf("scanless: compile: rule %q references unknown child rule %q", rd.Name, cn)
				}
				r.Children[ci] = id
			}
		}
	}
	return rules, nil
}

// --- bottom-up first-character analysis (spec §4.1 step 5) ---

const (
	fcUnvisited = iota
	fcInProgress
	fcDone
)

func computeTokenFirstChars(tokens []*TokenPattern) {
	state := make([]int, len(tokens))
	var visit func(id int32) (*FirstCharSet, bool)
	visit = func(id int32) (*FirstCharSet, bool) {
		if id < 0 || int(id) >= len(tokens) {
			return nil, false
		}
		t := tokens[id]
		switch state[id] {
		case fcDone:
			return t.FirstChars, t.FirstCharDeterministic
		case fcInProgress:
			return nil, false // cycle: conservatively non-deterministic
		}
		state[id] = fcInProgress
		set, det := tokenFirstChars(t, tokens, visit)
		t.FirstChars, t.FirstCharDeterministic = set, det
		state[id] = fcDone
		return set, det
	}
	for id := range tokens {
		visit(int32(id))
	}
}

// tokenZeroLengthCapable reports whether a token pattern can succeed with a
// zero-length match: Optional always can, Repeat can when MinCount is 0.
func tokenZeroLengthCapable(t *TokenPattern) bool {
	switch t.Kind {
	case TokOptional:
		return true
	case TokRepeat:
		return t.MinCount == 0
	default:
		return false
	}
}

func tokenFirstChars(t *TokenPattern, tokens []*TokenPattern, visit func(int32) (*FirstCharSet, bool)) (*FirstCharSet, bool) {
	switch t.Kind {
	case TokLiteralChar:
		if t.Comparison == CaseInsensitive {
			return NewFirstCharSet(unicode.ToUpper(t.Char), unicode.ToLower(t.Char)), true
		}
		return NewFirstCharSet(t.Char), true
	case TokLiteral:
		if t.Literal == "" {
			return NewFirstCharSet(), false
		}
		r := []rune(t.Literal)[0]
		if t.Comparison == CaseInsensitive {
			return NewFirstCharSet(unicode.ToUpper(r), unicode.ToLower(r)), true
		}
		return NewFirstCharSet(r), true
	case TokLiteralChoice, TokKeywordChoice:
		set := NewFirstCharSet()
		if t.Choices != nil {
			for _, lit := range t.Choices.Literals() {
				if lit == "" {
					return set, false
				}
				r := []rune(lit)[0]
				set.Add(r)
				if t.Comparison == CaseInsensitive {
					set.Add(unicode.ToUpper(r))
					set.Add(unicode.ToLower(r))
				}
			}
		}
		return set, true
	case TokNumber, TokIntegerNumber:
		set := NewFirstCharSet()
		for d := rune('0'); d <= '9'; d++ {
			set.Add(d)
		}
		if t.NumFlags.has(NumberAllowSign) {
			set.Add('+')
			set.Add('-')
		}
		for prefix := range t.BaseMapping {
			set.Add(prefix)
		}
		if t.DefaultBase > 10 {
			// letter digits of the default base are not listed
			return set, false
		}
		return set, true
	case TokWhitespaces:
		// Matches zero characters too, so it can begin at any character.
		return NewFirstCharSet(' ', '\t', '\n', '\r'), false
	case TokSpaces:
		return NewFirstCharSet(' ', '\t'), false
	case TokNewline:
		return NewFirstCharSet('\n', '\r'), true
	case TokSequence, TokBetween, TokSecond, TokMap, TokFailIf, TokCaptureText, TokSkipWhitespaces:
		if len(t.Children) == 0 {
			return NewFirstCharSet(), false
		}
		return visit(t.Children[0])
	case TokFirst:
		// First(a, b) matches a's first-chars unless a is optional (can
		// succeed on a zero-length match), in which case b might end up
		// being what actually determines the next character; union the
		// two sets and report non-deterministic.
		if len(t.Children) == 0 {
			return NewFirstCharSet(), false
		}
		aSet, aDet := visit(t.Children[0])
		if len(t.Children) < 2 {
			return aSet, aDet
		}
		aID := t.Children[0]
		if aID < 0 || int(aID) >= len(tokens) || !tokenZeroLengthCapable(tokens[aID]) {
			return aSet, aDet
		}
		bSet, _ := visit(t.Children[1])
		return aSet.Union(bSet), false
	case TokChoice:
		set := NewFirstCharSet()
		for _, cid := range t.Children {
			cset, det := visit(cid)
			if !det {
				return NewFirstCharSet(), false
			}
			set = set.Union(cset)
		}
		return set, true
	case TokOptional:
		// A zero-length match is always possible, so this token can
		// succeed on any character regardless of what the child reports.
		if len(t.Children) == 0 {
			return NewFirstCharSet(), false
		}
		set, _ := visit(t.Children[0])
		return set, false
	case TokRepeat:
		if len(t.Children) == 0 {
			return NewFirstCharSet(), false
		}
		set, det := visit(t.Children[0])
		if t.MinCount == 0 {
			return set, false
		}
		return set, det
	case TokSeparatedRepeat:
		if len(t.Children) == 0 {
			return NewFirstCharSet(), false
		}
		return visit(t.Children[0])
	case TokIf:
		thenSet, thenDet := visit(t.ThenID)
		if t.ElseID < 0 {
			return thenSet, thenDet
		}
		elseSet, elseDet := visit(t.ElseID)
		if !thenDet || !elseDet {
			return NewFirstCharSet(), false
		}
		return thenSet.Union(elseSet), true
	default:
		// Character, RepeatCharacters, Identifier, Regex, EscapedText, EOF,
		// AllText, Barrier, Return, TextUntil: not enumerable without
		// evaluating arbitrary predicates/regexes at compile time.
		return NewFirstCharSet(), false
	}
}

func computeRuleFirstChars(rules []*ParserRule, tokens []*TokenPattern) {
	state := make([]int, len(rules))
	var visit func(id int32) (*FirstCharSet, bool)
	visit = func(id int32) (*FirstCharSet, bool) {
		if id < 0 || int(id) >= len(rules) {
			return nil, false
		}
		r := rules[id]
		switch state[id] {
		case fcDone:
			return r.FirstChars, r.FirstCharDeterministic
		case fcInProgress:
			return nil, false
		}
		state[id] = fcInProgress
		var set *FirstCharSet
		var det bool
		switch r.Kind {
		case RuleToken:
			if int(r.TokenID) < len(tokens) {
				set, det = tokens[r.TokenID].FirstChars, tokens[r.TokenID].FirstCharDeterministic
			} else {
				set, det = NewFirstCharSet(), false
			}
		case RuleSequence:
			if len(r.Children) == 0 {
				set, det = NewFirstCharSet(), false
			} else {
				set, det = visit(r.Children[0])
			}
		case RuleChoice:
			set = NewFirstCharSet()
			det = true
			for _, cid := range r.Children {
				cset, cdet := visit(cid)
				if !cdet {
					set, det = NewFirstCharSet(), false
					break
				}
				set = set.Union(cset)
			}
		case RuleOptional, RuleRepeat:
			if len(r.Children) == 0 {
				set, det = NewFirstCharSet(), false
			} else {
				set, det = visit(r.Children[0])
			}
			r.IsOptional = r.Kind == RuleOptional || (r.Kind == RuleRepeat && r.MinCount == 0)
			if r.IsOptional {
				// A zero-length match is always possible, so this rule
				// can succeed on any character regardless of what the
				// child reports.
				det = false
			}
		case RuleSeparatedRepeat:
			if len(r.Children) == 0 {
				set, det = NewFirstCharSet(), false
			} else {
				set, det = visit(r.Children[0])
			}
			r.IsOptional = r.MinCount == 0
		default:
			set, det = NewFirstCharSet(), false
		}
		r.FirstChars, r.FirstCharDeterministic = set, det
		state[id] = fcDone
		return set, det
	}
	for id := range rules {
		visit(int32(id))
	}
}
