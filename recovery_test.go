package scanless

import "testing"

func findNextDigitGrammar(kind RecoveryKind, stopRef string) *Grammar {
	rd := RuleDef{Name: "digit_r", Kind: RuleToken, TokenRef: "digit",
		ValueFactory:     func(n ParsedRule) interface{} { return n.Text() },
		ErrorRecoveryRef: "rec", RequireEOF: true}
	return &Grammar{
		Tokens: []TokenDef{
			{Name: "digit", Kind: TokCharacter, CharPred: func(r rune) bool { return r >= '0' && r <= '9' }},
			{Name: "bang", Kind: TokLiteralChar, Char: '!'},
		},
		Rules: []RuleDef{
			{Name: "stop_r", Kind: RuleToken, TokenRef: "bang"},
			rd,
		},
		ErrorRecoveries: []ErrorRecoveryDef{{Name: "rec", Kind: kind, StopRef: stopRef}},
		MainRule:        "digit_r",
	}
}

func TestFindNextRecoversToNextSuccess(t *testing.T) {
	p, err := Compile(findNextDigitGrammar(RecoveryFindNext, ""))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("xx5", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "5" || res.Start() != 2 {
		t.Fatalf("expected recovery to resume at the digit (pos 2), got text %q at %d", res.Text(), res.Start())
	}
}

func TestFindNextUntilAbortsOnStopMatch(t *testing.T) {
	p, err := Compile(findNextDigitGrammar(RecoveryFindNextUntil, "stop_r"))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// The stop rule ('!') is encountered before any digit, so recovery
	// must give up rather than scanning past it.
	if _, err := p.Parse("x!5", nil); err == nil {
		t.Fatal("expected recovery to abort at the stop rule and fail the parse")
	}
}

func TestSkipUntilAnchorResumesAtAnchorStart(t *testing.T) {
	// The recovering rule matches digit-or-semicolon, so resuming right at
	// the anchor's own start position succeeds; the anchor itself is a
	// separate, recovery-free rule to avoid the recovering rule anchoring
	// on (and recursing through) itself.
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "semi", Kind: TokLiteralChar, Char: ';'},
			{Name: "digit", Kind: TokCharacter, CharPred: func(r rune) bool { return r >= '0' && r <= '9' }},
			{Name: "digit_or_semi", Kind: TokChoice, Children: []string{"digit", "semi"}},
		},
		Rules: []RuleDef{
			{Name: "semi_anchor_r", Kind: RuleToken, TokenRef: "semi"},
			{Name: "target_r", Kind: RuleToken, TokenRef: "digit_or_semi",
				ErrorRecoveryRef: "skip_to_semi", RequireEOF: true},
		},
		ErrorRecoveries: []ErrorRecoveryDef{
			{Name: "skip_to_semi", Kind: RecoverySkipUntilAnchor, AnchorRef: "semi_anchor_r"},
		},
		MainRule: "target_r",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("xx;", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Start() != 2 || res.Length() != 1 {
		t.Fatalf("expected the recovered match to land on the semicolon at position 2, got start=%d length=%d", res.Start(), res.Length())
	}
}

func TestSkipAfterAnchorResumesPastAnchor(t *testing.T) {
	rd := RuleDef{Name: "digit_r", Kind: RuleToken, TokenRef: "digit",
		ValueFactory:     func(n ParsedRule) interface{} { return n.Text() },
		ErrorRecoveryRef: "skip_after_hash", RequireEOF: true}
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "digit", Kind: TokCharacter, CharPred: func(r rune) bool { return r >= '0' && r <= '9' }},
			{Name: "hash", Kind: TokLiteralChar, Char: '#'},
		},
		Rules: []RuleDef{
			{Name: "hash_r", Kind: RuleToken, TokenRef: "hash"},
			rd,
		},
		ErrorRecoveries: []ErrorRecoveryDef{
			{Name: "skip_after_hash", Kind: RecoverySkipAfterAnchor, AnchorRef: "hash_r"},
		},
		MainRule: "digit_r",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("xx#5", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "5" || res.Start() != 3 {
		t.Fatalf("expected recovery to resume right after '#' (pos 3), got text %q at %d", res.Text(), res.Start())
	}
}
