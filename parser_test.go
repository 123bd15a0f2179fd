package scanless

import (
	"strconv"
	"strings"
	"testing"

	"github.com/scanlessgo/scanless/indent"
)

// isDigitRune is shared by the end-to-end scenarios below.
func isDigitRune(r rune) bool { return r >= '0' && r <= '9' }

// TestArithmeticEvalAddition builds "number '+' number" with whitespace
// skipping cascaded onto both operands, the way a real calculator grammar
// would (spec §8): "10 + 15" evaluates to 25.
func TestArithmeticEvalAddition(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "int_tok", Kind: TokRepeatCharacters, CharPred: isDigitRune, MinCount: 1},
			{Name: "plus_tok", Kind: TokLiteralChar, Char: '+'},
		},
		Rules: []RuleDef{
			{Name: "num_r", Kind: RuleToken, TokenRef: "int_tok",
				ValueFactory: func(n ParsedRule) interface{} {
					v, _ := strconv.Atoi(n.Text())
					return v
				}},
			{Name: "plus_r", Kind: RuleToken, TokenRef: "plus_tok"},
			{Name: "expr", Kind: RuleSequence, Children: []string{"num_r", "plus_r", "num_r"},
				Settings: LocalSettingsDef{
					SkippingStrategyRef: "ws",
					SkippingUseMode:     LocalForSelfAndChildren,
				},
				RequireEOF: true,
				ValueFactory: func(n ParsedRule) interface{} {
					lhs, rhs := n.Child(0), n.Child(2)
					return lhs.Value().(int) + rhs.Value().(int)
				}},
		},
		SkipStrategies: []SkipStrategyDef{{Name: "ws", Kind: SkipWhitespacesBuiltin}},
		MainRule:       "expr",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("10 + 15", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := res.Value().(int); got != 25 {
		t.Fatalf("expected 25, got %d", got)
	}
}

// jsonPair is the intermediate value produced by pair_r below.
type jsonPair struct {
	Key   string
	Value interface{}
}

// stringLiteral is a RuleCustom rule matching a double-quoted, unescaped
// string directly against the input, in the style of countingTarget in
// context_test.go.
func stringLiteral(p *Parser, ctx *Context, rule *ParserRule, pos uint64, eff effective) ParsedRule {
	input := ctx.Input
	if pos >= uint64(len(input)) || input[pos] != '"' {
		return RuleFail
	}
	cur := pos + 1
	for cur < uint64(len(input)) && input[cur] != '"' {
		cur++
	}
	if cur >= uint64(len(input)) {
		return RuleFail
	}
	content := input[pos+1 : cur]
	cur++
	return p.leafNode(rule.ID, pos, cur-pos, ctx.PassedBarriers, content)
}

// TestJSONObjectParsing builds a minimal JSON object grammar (string/number
// values only) out of SeparatedRepeat and RuleCustom (spec §8): parsing
// `{"a":1,"b":2}` produces the equivalent Go map.
func TestJSONObjectParsing(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "lbrace_tok", Kind: TokLiteralChar, Char: '{'},
			{Name: "rbrace_tok", Kind: TokLiteralChar, Char: '}'},
			{Name: "colon_tok", Kind: TokLiteralChar, Char: ':'},
			{Name: "comma_tok", Kind: TokLiteralChar, Char: ','},
			{Name: "num_tok", Kind: TokRepeatCharacters, CharPred: isDigitRune, MinCount: 1},
		},
		Rules: []RuleDef{
			{Name: "lbrace_r", Kind: RuleToken, TokenRef: "lbrace_tok"},
			{Name: "rbrace_r", Kind: RuleToken, TokenRef: "rbrace_tok"},
			{Name: "colon_r", Kind: RuleToken, TokenRef: "colon_tok"},
			{Name: "comma_r", Kind: RuleToken, TokenRef: "comma_tok"},
			{Name: "num_r", Kind: RuleToken, TokenRef: "num_tok",
				ValueFactory: func(n ParsedRule) interface{} {
					v, _ := strconv.Atoi(n.Text())
					return v
				}},
			{Name: "string_r", Kind: RuleCustom, Custom: stringLiteral},
			{Name: "value_r", Kind: RuleChoice, Children: []string{"string_r", "num_r"}},
			{Name: "pair_r", Kind: RuleSequence, Children: []string{"string_r", "colon_r", "value_r"},
				ValueFactory: func(n ParsedRule) interface{} {
					key, val := n.Child(0), n.Child(2)
					return jsonPair{Key: key.Value().(string), Value: val.Value()}
				}},
			{Name: "pairs_r", Kind: RuleSeparatedRepeat, Children: []string{"pair_r", "comma_r"}, MinCount: 0},
			{Name: "object_r", Kind: RuleSequence, Children: []string{"lbrace_r", "pairs_r", "rbrace_r"},
				RequireEOF: true,
				ValueFactory: func(n ParsedRule) interface{} {
					out := map[string]interface{}{}
					pairs := n.Child(1)
					for _, v := range pairs.Value().([]interface{}) {
						pair := v.(jsonPair)
						out[pair.Key] = pair.Value
					}
					return out
				}},
		},
		MainRule: "object_r",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse(`{"a":1,"b":2}`, nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	got := res.Value().(map[string]interface{})
	if got["a"] != 1 || got["b"] != 2 || len(got) != 2 {
		t.Fatalf("unexpected object: %v", got)
	}
}

// isLetterRune backs the identifier token of the indentation scenario.
func isLetterRune(r rune) bool { return r >= 'a' && r <= 'z' }

// TestIndentSensitiveBlockStructure wires the real indent.Tokenizer as a
// Grammar's BarrierTokenizer (spec §4.5, §6): one top-level statement, an
// indented block of two statements, then a dedented statement.
//
//	a
//	  b
//	  c
//	d
//
// The tokenizer places INDENT after a line's leading whitespace, so ws_r
// consumes the indentation in front of it (and in front of the block's
// second statement). NEWLINE is only emitted between non-blank lines, so
// the last statement ends on a plain newline character instead.
func TestIndentSensitiveBlockStructure(t *testing.T) {
	tok := indent.New()
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "INDENT", Kind: TokBarrier, Literal: "INDENT"},
			{Name: "DEDENT", Kind: TokBarrier, Literal: "DEDENT"},
			{Name: "NEWLINE", Kind: TokBarrier, Literal: "NEWLINE"},
			{Name: "ident_tok", Kind: TokIdentifier, StartPred: isLetterRune, ContPred: isLetterRune},
			{Name: "ws_tok", Kind: TokSpaces},
			{Name: "eol_tok", Kind: TokNewline},
		},
		Rules: []RuleDef{
			{Name: "newline_r", Kind: RuleToken, TokenRef: "NEWLINE"},
			{Name: "indent_r", Kind: RuleToken, TokenRef: "INDENT"},
			{Name: "dedent_r", Kind: RuleToken, TokenRef: "DEDENT"},
			{Name: "ident_r", Kind: RuleToken, TokenRef: "ident_tok",
				ValueFactory: func(n ParsedRule) interface{} { return n.Text() }},
			{Name: "ws_r", Kind: RuleToken, TokenRef: "ws_tok"},
			{Name: "eol_r", Kind: RuleToken, TokenRef: "eol_tok"},
			{Name: "line_end", Kind: RuleChoice, Children: []string{"newline_r", "eol_r"}},
			{Name: "stmt", Kind: RuleSequence, Children: []string{"ident_r", "line_end"},
				ValueFactory: func(n ParsedRule) interface{} { c := n.Child(0); return c.Value() }},
			{Name: "program", Kind: RuleSequence,
				Children:   []string{"stmt", "ws_r", "indent_r", "stmt", "ws_r", "stmt", "dedent_r", "stmt"},
				RequireEOF: true,
				ValueFactory: func(n ParsedRule) interface{} {
					vals := n.ChildValues()
					return []interface{}{vals[0], vals[3], vals[5], vals[7]}
				}},
		},
		BarrierTokenizer: tok,
		MainRule:         "program",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	// INDENT/DEDENT/NEWLINE were declared first, in that order, so they
	// compile to token IDs 0/1/2; bind the tokenizer to them now that
	// compilation has assigned real IDs.
	tok.BindTokenIDs(0, 1, 2)

	res, err := p.Parse("a\n  b\n  c\nd\n", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	want := []interface{}{"a", "b", "c", "d"}
	got := res.Value().([]interface{})
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// TestErrorRecoverySkipsPastSemicolonAnchor drives a RecoverySkipAfterAnchor
// strategy end-to-end through Parser.Parse (spec §8): a malformed statement
// is skipped by resuming right after the next ';'.
func TestErrorRecoverySkipsPastSemicolonAnchor(t *testing.T) {
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "digit_tok", Kind: TokCharacter, CharPred: isDigitRune},
			{Name: "semi_tok", Kind: TokLiteralChar, Char: ';'},
		},
		Rules: []RuleDef{
			{Name: "semi_r", Kind: RuleToken, TokenRef: "semi_tok"},
			{Name: "digit_r", Kind: RuleToken, TokenRef: "digit_tok",
				ValueFactory:     func(n ParsedRule) interface{} { return n.Text() },
				ErrorRecoveryRef: "skip_to_semi", RequireEOF: true},
		},
		ErrorRecoveries: []ErrorRecoveryDef{
			{Name: "skip_to_semi", Kind: RecoverySkipAfterAnchor, AnchorRef: "semi_r"},
		},
		MainRule: "digit_r",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	res, err := p.Parse("??;7", nil)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if res.Text() != "7" || res.Start() != 3 {
		t.Fatalf("expected recovery to resume right after ';' at position 3, got text %q at %d", res.Text(), res.Start())
	}
	// Recovery succeeded, but the original failure at the gap must still
	// be on record (spec §8 scenario 5: "exactly one error... at the gap
	// position"), even though res.Success() is true.
	if errs := res.Errors(); len(errs) != 1 {
		t.Fatalf("expected exactly one recorded error, got %d: %v", len(errs), errs)
	} else if errs[0].Position != 0 {
		t.Fatalf("expected the recorded error at the gap position 0, got %d", errs[0].Position)
	}
}

// TestBarrierMismatchWithRealIndentTokenizer drives a genuine barrier
// mismatch through the real indent.Tokenizer: two leading spaces land the
// parse exactly on the INDENT the tokenizer emits, but the grammar expects
// a DEDENT there.
func TestBarrierMismatchWithRealIndentTokenizer(t *testing.T) {
	tok := indent.New()
	g := &Grammar{
		Tokens: []TokenDef{
			{Name: "INDENT", Kind: TokBarrier, Literal: "INDENT"},
			{Name: "DEDENT", Kind: TokBarrier, Literal: "DEDENT"},
			{Name: "NEWLINE", Kind: TokBarrier, Literal: "NEWLINE"},
			{Name: "two_spaces", Kind: TokRepeatCharacters, CharPred: func(r rune) bool { return r == ' ' }, MinCount: 2, MaxCount: 2},
		},
		Rules: []RuleDef{
			{Name: "spaces_r", Kind: RuleToken, TokenRef: "two_spaces"},
			{Name: "dedent_r", Kind: RuleToken, TokenRef: "DEDENT"},
			{Name: "mismatch_r", Kind: RuleSequence, Children: []string{"spaces_r", "dedent_r"}},
		},
		BarrierTokenizer: tok,
		MainRule:         "mismatch_r",
	}
	p, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	tok.BindTokenIDs(0, 1, 2)

	// "  a\n" opens an indent level at position 2 (right after the leading
	// spaces); dedent_r tries to match there and finds an INDENT instead.
	_, err = p.Parse("  a\n", nil)
	if err == nil {
		t.Fatal("expected a barrier mismatch error")
	}
	if !strings.Contains(err.Error(), "barrier mismatch") {
		t.Fatalf("expected error to mention barrier mismatch, got: %v", err)
	}
}
