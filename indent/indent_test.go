package indent

import "testing"

func countKinds(t *testing.T, src string, tz *Tokenizer) (indents, dedents, newlines int) {
	t.Helper()
	vts, err := tz.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for _, vt := range vts {
		switch vt.TokenID {
		case tz.IndentID:
			indents++
		case tz.DedentID:
			dedents++
		case tz.NewlineID:
			newlines++
		}
	}
	return
}

func TestIndentDedentBalance(t *testing.T) {
	src := "a\n  b\n  c\nd\n"
	tz := New(WithTokenIDs(1, 2, 3))
	indents, dedents, newlines := countKinds(t, src, tz)
	if indents != dedents {
		t.Fatalf("unbalanced indent/dedent: %d indents, %d dedents", indents, dedents)
	}
	if indents != 1 {
		t.Fatalf("expected 1 indent, got %d", indents)
	}
	if newlines != 3 {
		t.Fatalf("expected 3 newlines, got %d", newlines)
	}
}

func TestBlankLinesIgnored(t *testing.T) {
	src := "a\n\n  b\n"
	tz := New(WithTokenIDs(1, 2, 3))
	vts, err := tz.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	for _, vt := range vts {
		if vt.TokenID == tz.NewlineID && vt.Start == 2 {
			t.Fatalf("blank line should not produce a newline token at the blank line itself")
		}
	}
}

func TestInconsistentDedentErrors(t *testing.T) {
	src := "a\n    b\n  c\n"
	tz := New(WithTokenIDs(1, 2, 3))
	if _, err := tz.Tokenize(src); err == nil {
		t.Fatal("expected an error for a dedent that matches no open indent level")
	}
}

func TestTabWidthExpansion(t *testing.T) {
	tz := New(WithTabWidth(4), WithTokenIDs(1, 2, 3))
	width, contentStart := measureIndent("\tx", tz.TabWidth)
	if width != 4 {
		t.Fatalf("expected tab to expand to width 4, got %d", width)
	}
	if contentStart != 1 {
		t.Fatalf("expected content to start at byte 1, got %d", contentStart)
	}
}

func TestClosingDedentsAtEOF(t *testing.T) {
	src := "a\n  b\n    c\n"
	tz := New(WithTokenIDs(1, 2, 3))
	vts, err := tz.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	trailing := 0
	for _, vt := range vts {
		if vt.TokenID == tz.DedentID && vt.Start == uint64(len(src)) {
			trailing++
		}
	}
	if trailing != 2 {
		t.Fatalf("expected 2 trailing dedents closing both opened levels, got %d", trailing)
	}
}
