package scanless

import "testing"

func TestCompileDedupsIdenticalTokens(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "plus", Kind: TokLiteralChar, Char: '+'},
			{Name: "also_plus", Kind: TokLiteralChar, Char: '+'},
		},
		Rules: []RuleDef{
			{Name: "plus_rule", Kind: RuleToken, TokenRef: "also_plus", RequireEOF: true},
		},
		MainRule: "plus_rule",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(p.tokens.tokens) != 1 {
		t.Fatalf("expected identical token defs to dedup to 1 entry, got %d", len(p.tokens.tokens))
	}
	if p.tokenNameToID["plus"] != p.tokenNameToID["also_plus"] {
		t.Fatal("expected both names to resolve to the same compiled token")
	}
	if _, err := p.Parse("+", nil); err != nil {
		t.Fatalf("unexpected parse failure: %v", err)
	}
}

func TestCompileRejectsUnknownMainRule(t *testing.T) {
	g := &Grammar{
		Tokens:   []TokenDef{{Name: "plus", Kind: TokLiteralChar, Char: '+'}},
		Rules:    []RuleDef{{Name: "plus_rule", Kind: RuleToken, TokenRef: "plus"}},
		MainRule: "nope",
	}
	if _, err := Compile(g); err == nil {
		t.Fatal("expected an error for an unknown main rule")
	}
}

func TestCompileRejectsUnknownChildReference(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{{Name: "plus", Kind: TokLiteralChar, Char: '+'}},
		Rules: []RuleDef{
			{Name: "plus_rule", Kind: RuleToken, TokenRef: "plus"},
			{Name: "seq", Kind: RuleSequence, Children: []string{"plus_rule", "missing"}},
		},
		MainRule: "seq",
	}
	if _, err := Compile(g); err == nil {
		t.Fatal("expected an error for a reference to an undefined rule")
	}
}

func TestCompileRejectsDuplicateNames(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "plus", Kind: TokLiteralChar, Char: '+'},
			{Name: "plus", Kind: TokLiteralChar, Char: '-'},
		},
		MainRule: "x",
	}
	if _, err := Compile(g); err == nil {
		t.Fatal("expected an error for a duplicate token name")
	}
}

func TestCompileComputesDeterministicFirstCharsForLiteralChoice(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "kw", Kind: TokLiteralChoice, Choices: []string{"if", "else"}},
		},
		Rules: []RuleDef{
			{Name: "kw_rule", Kind: RuleToken, TokenRef: "kw"},
		},
		MainRule: "kw_rule",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tok := p.tokens.get(p.tokenNameToID["kw"])
	if !tok.FirstCharDeterministic {
		t.Fatal("expected a literal choice over fixed keywords to be first-character deterministic")
	}
	if !tok.FirstChars.Contains('i') || !tok.FirstChars.Contains('e') {
		t.Fatalf("expected first-char set to contain 'i' and 'e', got %v", tok.FirstChars.Runes())
	}
}
