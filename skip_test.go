package scanless

import "testing"

func digitToken() TokenDef {
	return TokenDef{Name: "digit", Kind: TokCharacter, CharPred: func(r rune) bool { return r >= '0' && r <= '9' }}
}

func digitValueRule(name string) RuleDef {
	return RuleDef{Name: name, Kind: RuleToken, TokenRef: "digit",
		ValueFactory: func(n ParsedRule) interface{} { return n.Text() }}
}

func TestSkipWhitespacesBuiltinStripsLeadingSpace(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{digitToken()},
		Rules: []RuleDef{
			func() RuleDef {
				rd := digitValueRule("num")
				rd.RequireEOF = false
				rd.Settings.SkippingStrategyRef = "ws"
				rd.Settings.SkippingUseMode = LocalForSelf
				return rd
			}(),
		},
		SkipStrategies: []SkipStrategyDef{{Name: "ws", Kind: SkipWhitespacesBuiltin}},
		MainRule:       "num",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("   7", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "7" {
		t.Fatalf("expected the digit to be found after skipping spaces, got %q", res.Text())
	}
}

// markerSkipGrammar builds a digit rule whose skip strategy strips a ">>"
// marker (SkipBeforeParsing family) or retries after one on body failure
// (SkipTryParseThenSkip family), depending on kind.
func markerSkipGrammar(kind SkipKind) *Grammar {
	rd := digitValueRule("num")
	rd.RequireEOF = true
	rd.Settings.SkippingStrategyRef = "marker_skip"
	rd.Settings.SkippingUseMode = LocalForSelf
	return &Grammar{
		Tokens: []TokenDef{
			digitToken(),
			{Name: "marker", Kind: TokLiteral, Literal: ">>"},
		},
		Rules: []RuleDef{
			{Name: "marker_r", Kind: RuleToken, TokenRef: "marker"},
			rd,
		},
		SkipStrategies: []SkipStrategyDef{{Name: "marker_skip", Kind: kind, RuleRef: "marker_r"}},
		MainRule:       "num",
	}
}

func TestSkipBeforeParsingStripsOneMarker(t *testing.T) {
	p, err := Compile(markerSkipGrammar(SkipBeforeParsing))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse(">>5", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "5" {
		t.Fatalf("expected %q, got %q", "5", res.Text())
	}
}

func TestSkipBeforeParsingDoesNotStripTwoMarkers(t *testing.T) {
	// SkipBeforeParsing performs exactly one attempt, so a second marker
	// left in front of the digit should make the whole parse fail under
	// RequireEOF (the body would have to start at '>').
	p, err := Compile(markerSkipGrammar(SkipBeforeParsing))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := p.Parse(">>>>5", nil); err == nil {
		t.Fatal("expected a single skip attempt to leave one marker unconsumed")
	}
}

func TestSkipBeforeParsingGreedyStripsAllMarkers(t *testing.T) {
	p, err := Compile(markerSkipGrammar(SkipBeforeParsingGreedy))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse(">>>>5", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "5" {
		t.Fatalf("expected %q, got %q", "5", res.Text())
	}
}

func TestTryParseThenSkipRetriesAfterBodyFailure(t *testing.T) {
	p, err := Compile(markerSkipGrammar(SkipTryParseThenSkip))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// The body (digit) fails at position 0 against ">>5"; the strategy then
	// consumes the marker and retries, succeeding against "5".
	res, err := p.Parse(">>5", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "5" {
		t.Fatalf("expected %q, got %q", "5", res.Text())
	}
}

func TestFindAllMatchesScansWholeInput(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{digitToken()},
		Rules:  []RuleDef{digitValueRule("num")},
		MainRule: "num",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	matches, err := p.FindAllMatches("num", "a1b2c3", nil, false)
	if err != nil {
		t.Fatalf("FindAllMatches: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	for i, want := range []string{"1", "2", "3"} {
		if matches[i].Text() != want {
			t.Fatalf("match %d: expected %q, got %q", i, want, matches[i].Text())
		}
	}
}
