package scanless

import (
	"strings"
	"testing"
)

func TestBarrierTokenMapLookupAndNext(t *testing.T) {
	m := NewBarrierTokenMap([]VirtualToken{
		{TokenID: 2, Start: 10, Length: 0, Ordinal: 1},
		{TokenID: 1, Start: 10, Length: 0, Ordinal: 0},
		{TokenID: 3, Start: 20, Length: 1, Ordinal: 2},
	})
	if vt, ok := m.Lookup(10, 0); !ok || vt.TokenID != 1 {
		t.Fatalf("expected ordinal 0 (TokenID 1) to sort before ordinal 1 at the same position, got %+v, ok=%v", vt, ok)
	}
	if vt, ok := m.Lookup(10, 1); !ok || vt.TokenID != 2 {
		t.Fatalf("expected second slot at position 10 to be TokenID 2, got %+v, ok=%v", vt, ok)
	}
	if next := m.NextBarrierPosition(11, 2); next != 20 {
		t.Fatalf("expected next barrier at 20, got %d", next)
	}
	if next := m.NextBarrierPosition(21, 3); next != noBarrier {
		t.Fatalf("expected no further barrier, got %d", next)
	}
}

// fixedTokenizer is a stub BarrierTokenizer returning a pre-built list,
// used to drive Parser.parse through the barrier-matching path without a
// full indentation scan.
type fixedTokenizer []VirtualToken

func (f fixedTokenizer) Tokenize(string) ([]VirtualToken, error) { return []VirtualToken(f), nil }

func barrierMarkerGrammar(tokenizer BarrierTokenizer, mainRule string) *Grammar {
	return &Grammar{
		Tokens: []TokenDef{
			{Name: "INDENT", Kind: TokBarrier, Literal: "INDENT"},
			{Name: "DEDENT", Kind: TokBarrier, Literal: "DEDENT"},
		},
		Rules: []RuleDef{
			{Name: "indent_rule", Kind: RuleToken, TokenRef: "INDENT", RequireEOF: true},
			{Name: "dedent_rule", Kind: RuleToken, TokenRef: "DEDENT", RequireEOF: true},
		},
		BarrierTokenizer: tokenizer,
		MainRule:         mainRule,
	}
}

func TestBarrierMatchSucceeds(t *testing.T) {
	// INDENT was declared first, so it compiles to token ID 0.
	g := barrierMarkerGrammar(fixedTokenizer{{TokenID: 0, Start: 0, Length: 0}}, "indent_rule")
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("", nil)
	if err != nil {
		t.Fatalf("expected the rule to consume the matching virtual token, got error: %v", err)
	}
	if !res.Success() {
		t.Fatal("expected a successful match")
	}
}

func TestBarrierMismatchFails(t *testing.T) {
	// DEDENT compiles to token ID 1; indent_rule expects ID 0.
	g := barrierMarkerGrammar(fixedTokenizer{{TokenID: 1, Start: 0, Length: 0}}, "indent_rule")
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = p.Parse("", nil)
	if err == nil {
		t.Fatal("expected a barrier mismatch error")
	}
	if !strings.Contains(err.Error(), "barrier mismatch") {
		t.Fatalf("expected error to mention barrier mismatch, got: %v", err)
	}
}
