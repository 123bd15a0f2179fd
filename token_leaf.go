package scanless

import (
	"strconv"
	"unicode"
)

// matchLeaf dispatches the leaf token variants (spec §4.2).
func (t *TokenPattern) matchLeaf(input string, pos, barrierPos uint64, wantValue bool, furthest *FurthestError) ParsedElement {
	switch t.Kind {
	case TokLiteralChar:
		return t.matchLiteralChar(input, pos, barrierPos, furthest)
	case TokLiteral:
		return t.matchLiteral(input, pos, barrierPos, furthest)
	case TokLiteralChoice:
		return t.matchLiteralChoice(input, pos, barrierPos, furthest)
	case TokKeywordChoice:
		return t.matchKeywordChoice(input, pos, barrierPos, furthest)
	case TokCharacter:
		return t.matchCharacter(input, pos, barrierPos, furthest)
	case TokRepeatCharacters:
		return t.matchRepeatCharacters(input, pos, barrierPos, furthest)
	case TokIdentifier:
		return t.matchIdentifier(input, pos, barrierPos, wantValue, furthest)
	case TokNumber:
		return t.matchNumber(input, pos, barrierPos, furthest)
	case TokIntegerNumber:
		return t.matchIntegerNumber(input, pos, barrierPos, furthest)
	case TokRegex:
		return t.matchRegex(input, pos, barrierPos, wantValue, furthest)
	case TokEscapedText:
		return t.matchEscapedText(input, pos, barrierPos, wantValue, furthest)
	case TokWhitespaces:
		return t.matchWhitespaces(input, pos, barrierPos)
	case TokSpaces:
		return t.matchSpaces(input, pos, barrierPos)
	case TokNewline:
		return t.matchNewline(input, pos, barrierPos, furthest)
	case TokEOF:
		return t.matchEOF(input, pos, barrierPos, furthest)
	case TokAllText:
		return Ok(pos, barrierPos-pos, input[pos:barrierPos])
	case TokBarrier:
		// Barrier tokens are never matched directly at the token-pattern
		// level; they are consumed through TokenParserRule's barrier-map
		// lookup (spec §4.5). Reaching here means a rule tried to match a
		// Barrier-kind token pattern without barrier support, which is a
		// grammar error surfaced as an ordinary failure.
		return t.fail(pos, "barrier tokens cannot be matched directly", furthest)
	default:
		return t.fail(pos, "unknown leaf token kind", furthest)
	}
}

func charAt(input string, pos uint64) (rune, int, bool) {
	if pos >= uint64(len(input)) {
		return 0, 0, false
	}
	for i, r := range input[pos:] {
		_ = i
		return r, len(string(r)), true
	}
	return 0, 0, false
}

func equalRune(a, b rune, cmp Comparison) bool {
	if cmp == CaseInsensitive {
		return unicode.ToLower(a) == unicode.ToLower(b)
	}
	return a == b
}

func (t *TokenPattern) matchLiteralChar(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	r, n, ok := charAt(input, pos)
	if !ok || pos >= barrierPos || !equalRune(r, t.Char, t.Comparison) {
		return t.fail(pos, "expected character '"+string(t.Char)+"'", furthest)
	}
	return Ok(pos, uint64(n), t.Char)
}

func (t *TokenPattern) matchLiteral(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	lit := t.Literal
	end := pos + uint64(len(lit))
	if end > barrierPos || end > uint64(len(input)) {
		return t.fail(pos, "expected '"+lit+"'", furthest)
	}
	slice := input[pos:end]
	if t.Comparison == CaseInsensitive {
		if !equalFold(slice, lit) {
			return t.fail(pos, "expected '"+lit+"'", furthest)
		}
	} else if slice != lit {
		return t.fail(pos, "expected '"+lit+"'", furthest)
	}
	return Ok(pos, uint64(len(lit)), lit)
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) != len(rb) {
		return false
	}
	for i := range ra {
		if unicode.ToLower(ra[i]) != unicode.ToLower(rb[i]) {
			return false
		}
	}
	return true
}

func (t *TokenPattern) matchLiteralChoice(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	limit := input
	if barrierPos < uint64(len(input)) {
		limit = input[:barrierPos]
	}
	m := t.Choices.LongestMatch(limit, int(pos))
	if !m.Found {
		return t.fail(pos, "no matching literal", furthest)
	}
	return Ok(pos, uint64(m.Length), m.Value)
}

func (t *TokenPattern) matchKeywordChoice(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	res := t.matchLiteralChoice(input, pos, barrierPos, furthest)
	if !res.Success {
		return res
	}
	if t.ProhibitedChar != nil {
		if r, _, ok := charAt(input, res.End()); ok && t.ProhibitedChar(r) {
			return t.fail(pos, "keyword followed by prohibited character", furthest)
		}
	}
	return res
}

func (t *TokenPattern) matchCharacter(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	r, n, ok := charAt(input, pos)
	if !ok || pos >= barrierPos || !t.CharPred(r) {
		return t.fail(pos, "unexpected character", furthest)
	}
	return Ok(pos, uint64(n), nil)
}

func (t *TokenPattern) matchRepeatCharacters(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	cur := pos
	count := 0
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || !t.CharPred(r) {
			break
		}
		if t.MaxCount > 0 && count >= t.MaxCount {
			break
		}
		cur += uint64(n)
		count++
	}
	if count < t.MinCount {
		return t.fail(pos, "too few matching characters", furthest)
	}
	return Ok(pos, cur-pos, nil)
}

func (t *TokenPattern) matchIdentifier(input string, pos, barrierPos uint64, wantValue bool, furthest *FurthestError) ParsedElement {
	r, n, ok := charAt(input, pos)
	if !ok || pos >= barrierPos || !t.StartPred(r) {
		return t.fail(pos, "expected identifier", furthest)
	}
	cur := pos + uint64(n)
	length := 1
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || !t.ContPred(r) {
			break
		}
		if t.MaxLen > 0 && length >= t.MaxLen {
			break
		}
		cur += uint64(n)
		length++
	}
	if length < t.MinLen {
		return t.fail(pos, "identifier too short", furthest)
	}
	var value interface{}
	if wantValue {
		value = input[pos:cur]
	}
	return Ok(pos, cur-pos, value)
}

func (t *TokenPattern) matchNumber(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	cur := pos
	if t.NumFlags.has(NumberAllowSign) {
		if r, n, ok := charAt(input, cur); ok && (r == '+' || r == '-') {
			cur += uint64(n)
		}
	}
	digitsStart := cur
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || !unicode.IsDigit(r) {
			break
		}
		cur += uint64(n)
	}
	if cur == digitsStart {
		return t.fail(pos, "expected digits", furthest)
	}
	isFloat := false
	if t.NumKind == NumberFloat64 {
		if r, n, ok := charAt(input, cur); ok && r == '.' {
			isFloat = true
			cur += uint64(n)
			for cur < barrierPos {
				r, n, ok := charAt(input, cur)
				if !ok || !unicode.IsDigit(r) {
					break
				}
				cur += uint64(n)
			}
		}
		if t.NumFlags.has(NumberAllowScientific) {
			if r, n, ok := charAt(input, cur); ok && (r == 'e' || r == 'E') {
				save := cur
				next := cur + uint64(n)
				if r2, n2, ok := charAt(input, next); ok && (r2 == '+' || r2 == '-') {
					next += uint64(n2)
				}
				digitsBefore := next
				for next < barrierPos {
					r3, n3, ok := charAt(input, next)
					if !ok || !unicode.IsDigit(r3) {
						break
					}
					next += uint64(n3)
				}
				if next > digitsBefore {
					isFloat = true
					cur = next
				} else {
					cur = save
				}
			}
		}
	}
	text := input[pos:cur]
	var value interface{}
	var err error
	switch {
	case isFloat || t.NumKind == NumberFloat64:
		value, err = strconv.ParseFloat(text, 64)
	case t.NumKind == NumberUint64:
		value, err = strconv.ParseUint(text, 10, 64)
	default:
		value, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		return t.fail(pos, "numeric overflow or invalid number: "+err.Error(), furthest)
	}
	return Ok(pos, cur-pos, value)
}

func (t *TokenPattern) matchIntegerNumber(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	cur := pos
	base := t.DefaultBase
	if base == 0 {
		base = 10
	}
	if r, n, ok := charAt(input, cur); ok && r == '0' {
		if r2, n2, ok2 := charAt(input, cur+uint64(n)); ok2 {
			if b, known := t.BaseMapping[r2]; known {
				base = b
				cur += uint64(n) + uint64(n2)
			}
		}
	}
	digitsStart := cur
	var acc uint64
	overflow := false
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok {
			break
		}
		if t.GroupSep != 0 && r == t.GroupSep {
			cur += uint64(n)
			continue
		}
		d, ok := digitValue(r)
		if !ok || d >= base {
			break
		}
		if acc > (^uint64(0)-uint64(d))/uint64(base) {
			overflow = true
		}
		acc = acc*uint64(base) + uint64(d)
		cur += uint64(n)
	}
	if cur == digitsStart {
		return t.fail(pos, "expected integer digits", furthest)
	}
	if overflow {
		return t.fail(pos, "integer overflow", furthest)
	}
	return Ok(pos, cur-pos, acc)
}

func digitValue(r rune) (int, bool) {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0'), true
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 10, true
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 10, true
	default:
		return 0, false
	}
}

func (t *TokenPattern) matchRegex(input string, pos, barrierPos uint64, wantValue bool, furthest *FurthestError) ParsedElement {
	limit := input
	if barrierPos < uint64(len(input)) {
		limit = input[:barrierPos]
	}
	loc := t.Regex.FindStringSubmatchIndex(limit[pos:])
	if loc == nil || (t.StartAnchored && loc[0] != 0) {
		return t.fail(pos, "regex did not match", furthest)
	}
	matchLen := uint64(loc[1] - loc[0])
	start := pos + uint64(loc[0])
	if !t.StartAnchored {
		// Anchored-at-pos semantics per spec §4.2: even when the regex
		// itself isn't literally ^-anchored, a non-zero loc[0] means the
		// match did not begin at pos, which is a failure for this engine.
		if loc[0] != 0 {
			return t.fail(pos, "regex did not match at position", furthest)
		}
	}
	var value interface{}
	if wantValue {
		names := t.Regex.SubexpNames()
		groups := map[string]string{}
		for i, name := range names {
			if name == "" || 2*i+1 >= len(loc) || loc[2*i] < 0 {
				continue
			}
			groups[name] = limit[pos+uint64(loc[2*i]) : pos+uint64(loc[2*i+1])]
		}
		value = RegexValue{Text: limit[start : start+matchLen], Groups: groups}
	}
	return Ok(start, matchLen, value)
}

func (t *TokenPattern) matchEscapedText(input string, pos, barrierPos uint64, wantValue bool, furthest *FurthestError) ParsedElement {
	var b []byte
	cur := pos
	for cur < barrierPos {
		if t.Escaping.TryStop != nil {
			if n := t.Escaping.TryStop(input, int(cur)); n > 0 {
				if t.ConsumeStop {
					cur += uint64(n)
				}
				if cur == pos && !t.AllowEmpty {
					return t.fail(pos, "empty escaped text not allowed", furthest)
				}
				var value interface{}
				if wantValue {
					value = string(b)
				}
				return Ok(pos, cur-pos, value)
			}
		}
		if n, repl := t.Escaping.TryEscape(input, int(cur)); n > 0 {
			b = append(b, repl...)
			cur += uint64(n)
			continue
		}
		r, n, ok := charAt(input, cur)
		if !ok {
			break
		}
		b = append(b, string(r)...)
		cur += uint64(n)
	}
	if cur == pos && !t.AllowEmpty {
		return t.fail(pos, "empty escaped text not allowed", furthest)
	}
	var value interface{}
	if wantValue {
		value = string(b)
	}
	return Ok(pos, cur-pos, value)
}

func (t *TokenPattern) matchWhitespaces(input string, pos, barrierPos uint64) ParsedElement {
	cur := pos
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || !unicode.IsSpace(r) {
			break
		}
		cur += uint64(n)
	}
	return Ok(pos, cur-pos, nil)
}

func (t *TokenPattern) matchSpaces(input string, pos, barrierPos uint64) ParsedElement {
	cur := pos
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || (r != ' ' && r != '\t') {
			break
		}
		cur += uint64(n)
	}
	return Ok(pos, cur-pos, nil)
}

func (t *TokenPattern) matchNewline(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	r, n, ok := charAt(input, pos)
	if !ok || pos >= barrierPos || r != '\n' {
		if ok && r == '\r' {
			next := pos + uint64(n)
			if r2, n2, ok2 := charAt(input, next); ok2 && r2 == '\n' {
				return Ok(pos, uint64(n)+uint64(n2), nil)
			}
			return Ok(pos, uint64(n), nil)
		}
		return t.fail(pos, "expected newline", furthest)
	}
	return Ok(pos, uint64(n), nil)
}

func (t *TokenPattern) matchEOF(input string, pos, barrierPos uint64, furthest *FurthestError) ParsedElement {
	if pos >= uint64(len(input)) {
		return Ok(pos, 0, nil)
	}
	return t.fail(pos, "expected end of input", furthest)
}
