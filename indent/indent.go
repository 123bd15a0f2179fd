/*
Package indent implements a built-in BarrierTokenizer for
indentation-sensitive grammars (spec §4.5, §6): a single pre-pass over the
input produces INDENT, DEDENT and NEWLINE virtual tokens from the leading
whitespace of each non-blank line, the way Python's lexer does it. Blank
(whitespace-only) lines are invisible to this pass: they neither shift the
indent stack nor produce a NEWLINE.

The three token IDs a Tokenizer emits are whatever a grammar's own INDENT /
DEDENT / NEWLINE token patterns compile to; since Compile only assigns IDs
once grammar compilation finishes, a Tokenizer is built unbound and then
wired to its compiled IDs with BindTokenIDs before first use.
*/
package indent

import (
	"fmt"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/scanlessgo/scanless"
)

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithTabWidth sets how many indent-width columns a tab character expands
// to when measuring a line's indentation. Default 8.
func WithTabWidth(width int) Option {
	return func(t *Tokenizer) { t.TabWidth = width }
}

// WithTokenIDs pre-binds the compiled token IDs a Tokenizer emits, for
// callers that already know them (e.g. when reusing a Tokenizer across
// grammars sharing the same token table).
func WithTokenIDs(indentID, dedentID, newlineID int32) Option {
	return func(t *Tokenizer) {
		t.IndentID, t.DedentID, t.NewlineID = indentID, dedentID, newlineID
	}
}

// Tokenizer is the built-in BarrierTokenizer implementation. The zero
// value is usable once BindTokenIDs has been called; New applies defaults
// and any Options.
type Tokenizer struct {
	TabWidth                      int
	IndentID, DedentID, NewlineID int32
}

// New creates a Tokenizer with default tab width 8 and unbound token IDs
// (-1); BindTokenIDs (or WithTokenIDs) must be called before Tokenize can
// produce usable virtual tokens.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{TabWidth: 8, IndentID: -1, DedentID: -1, NewlineID: -1}
	for _, o := range opts {
		o(t)
	}
	return t
}

// BindTokenIDs sets the compiled token IDs to emit, once they are known
// (i.e. after Compile has run over the grammar that owns them).
func (t *Tokenizer) BindTokenIDs(indentID, dedentID, newlineID int32) {
	t.IndentID, t.DedentID, t.NewlineID = indentID, dedentID, newlineID
}

// Tokenize implements scanless.BarrierTokenizer.
func (t *Tokenizer) Tokenize(input string) ([]scanless.VirtualToken, error) {
	stack := arraylist.New()
	stack.Add(0)

	var out []scanless.VirtualToken
	var ordinal uint32
	push := func(tokenID int32, start, length uint64) {
		out = append(out, scanless.VirtualToken{TokenID: tokenID, Start: start, Length: length, Ordinal: ordinal})
		ordinal++
	}

	n := len(input)
	lineStart := 0
	first := true
	pendingNewlineAt, pendingNewlineLen := -1, 0

	flushLine := func(lineEnd int) error {
		line := input[lineStart:lineEnd]
		width, contentStart := measureIndent(line, t.TabWidth)
		if contentStart == len(line) {
			return nil // blank line: invisible to indent tracking
		}
		if !first && pendingNewlineAt >= 0 {
			push(t.NewlineID, uint64(pendingNewlineAt), uint64(pendingNewlineLen))
		}
		top, _ := stack.Get(stack.Size() - 1)
		switch topWidth := top.(int); {
		case width > topWidth:
			stack.Add(width)
			push(t.IndentID, uint64(lineStart+contentStart), 0)
		case width < topWidth:
			for {
				v, _ := stack.Get(stack.Size() - 1)
				cur := v.(int)
				if cur <= width {
					break
				}
				stack.Remove(stack.Size() - 1)
				push(t.DedentID, uint64(lineStart+contentStart), 0)
			}
			v, _ := stack.Get(stack.Size() - 1)
			if v.(int) != width {
				return fmt.Errorf("indent: dedent at byte %d does not match any open indent level", lineStart)
			}
		}
		if lineEnd < n {
			pendingNewlineAt, pendingNewlineLen = lineEnd, 1
		}
		first = false
		return nil
	}

	pos := 0
	for pos <= n {
		if pos == n || input[pos] == '\n' {
			if err := flushLine(pos); err != nil {
				return nil, err
			}
			lineStart = pos + 1
		}
		pos++
	}

	for stack.Size() > 1 {
		stack.Remove(stack.Size() - 1)
		push(t.DedentID, uint64(n), 0)
	}
	return out, nil
}

// measureIndent returns the indent width (tabs expanded to tabWidth
// columns) and the byte offset of the first non-whitespace rune in line.
func measureIndent(line string, tabWidth int) (width, contentStart int) {
	if tabWidth <= 0 {
		tabWidth = 8
	}
	for i, r := range line {
		switch r {
		case ' ':
			width++
		case '\t':
			width += tabWidth - (width % tabWidth)
		case '\r':
			// ignore trailing CR of CRLF line endings
		default:
			return width, i
		}
	}
	return width, len(line)
}
