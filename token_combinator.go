package scanless

// matchCombinator dispatches the combinator token variants operating over
// child token IDs (spec §4.2). Failure is always local: no partial
// advance is retained by a failing combinator.
func (t *TokenPattern) matchCombinator(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	switch t.Kind {
	case TokSequence:
		return t.matchSequence(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokChoice:
		return t.matchChoice(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokOptional:
		return t.matchOptional(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokRepeat:
		return t.matchRepeat(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokSeparatedRepeat:
		return t.matchSeparatedRepeat(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokBetween:
		return t.matchBetween(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokFirst:
		return t.matchFirstSecond(tbl, input, pos, barrierPos, parameter, wantValue, furthest, true)
	case TokSecond:
		return t.matchFirstSecond(tbl, input, pos, barrierPos, parameter, wantValue, furthest, false)
	case TokMap:
		return t.matchMap(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokReturn:
		return t.matchReturn(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokFailIf:
		return t.matchFailIf(tbl, input, pos, barrierPos, parameter, furthest)
	case TokCaptureText:
		return t.matchCaptureText(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokIf:
		return t.matchIf(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokSkipWhitespaces:
		return t.matchSkipWhitespaces(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	case TokTextUntil:
		return t.matchTextUntil(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
	default:
		return t.fail(pos, "unknown combinator token kind", furthest)
	}
}

func (t *TokenPattern) child(tbl *tokenTable, i int) *TokenPattern {
	return tbl.get(t.Children[i])
}

func (t *TokenPattern) matchSequence(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	cur := pos
	values := make([]interface{}, 0, len(t.Children))
	for _, cid := range t.Children {
		c := tbl.get(cid)
		res := c.Match(tbl, input, cur, barrierPos, parameter, wantValue, furthest)
		if !res.Success {
			return FailElement
		}
		cur += res.Length
		values = append(values, res.IntermediateValue)
	}
	var value interface{}
	if wantValue {
		if t.Passage != nil {
			value = t.Passage(values)
		}
	}
	return Ok(pos, cur-pos, value)
}

func (t *TokenPattern) matchChoice(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	if t.HasFlag(FlagFirstCharacterMatch) && pos < uint64(len(input)) {
		if r, _, ok := charAt(input, pos); ok {
			for _, cid := range t.Children {
				c := tbl.get(cid)
				if c.FirstCharDeterministic && !c.FirstChars.Contains(r) {
					continue
				}
				if res := c.Match(tbl, input, pos, barrierPos, parameter, wantValue, furthest); res.Success {
					return res
				}
			}
			return FailElement
		}
	}
	for _, cid := range t.Children {
		c := tbl.get(cid)
		if res := c.Match(tbl, input, pos, barrierPos, parameter, wantValue, furthest); res.Success {
			return res
		}
	}
	return FailElement
}

func (t *TokenPattern) matchOptional(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	if res := c.Match(tbl, input, pos, barrierPos, parameter, wantValue, furthest); res.Success {
		return res
	}
	return Ok(pos, 0, nil)
}

func (t *TokenPattern) matchRepeat(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	cur := pos
	var values []interface{}
	count := 0
	for t.MaxCount == 0 || count < t.MaxCount {
		res := c.Match(tbl, input, cur, barrierPos, parameter, wantValue, furthest)
		if !res.Success {
			break
		}
		if res.Length == 0 && count > 0 {
			// zero-length match: stop to avoid an infinite loop (spec §4.2
			// "greedy; stops on failure"); a zero-length success after at
			// least one real iteration is treated as exhausted.
			break
		}
		cur += res.Length
		if wantValue {
			values = append(values, res.IntermediateValue)
		}
		count++
		if res.Length == 0 {
			break
		}
	}
	if count < t.MinCount {
		return FailElement
	}
	var value interface{}
	if wantValue {
		value = values
	}
	return Ok(pos, cur-pos, value)
}

func (t *TokenPattern) matchSeparatedRepeat(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	item := t.child(tbl, 0)
	sep := t.child(tbl, 1)
	cur := pos
	var values []interface{}
	first := item.Match(tbl, input, cur, barrierPos, parameter, wantValue, furthest)
	if !first.Success {
		if t.MinCount == 0 {
			return Ok(pos, 0, emptyRepeatValue(wantValue))
		}
		return FailElement
	}
	cur += first.Length
	if wantValue {
		values = append(values, first.IntermediateValue)
	}
	count := 1
	for t.MaxCount == 0 || count < t.MaxCount {
		sepRes := sep.Match(tbl, input, cur, barrierPos, parameter, t.IncludeSeparatorText, furthest)
		if !sepRes.Success {
			break
		}
		itemRes := item.Match(tbl, input, cur+sepRes.Length, barrierPos, parameter, wantValue, furthest)
		if !itemRes.Success {
			if t.AllowTrailingSeparator {
				cur += sepRes.Length
				if wantValue && t.IncludeSeparatorText {
					values = append(values, sepRes.IntermediateValue)
				}
			}
			break
		}
		cur += sepRes.Length + itemRes.Length
		if wantValue {
			if t.IncludeSeparatorText {
				values = append(values, sepRes.IntermediateValue)
			}
			values = append(values, itemRes.IntermediateValue)
		}
		count++
	}
	if count < t.MinCount {
		return FailElement
	}
	var value interface{}
	if wantValue {
		value = values
	}
	return Ok(pos, cur-pos, value)
}

func emptyRepeatValue(wantValue bool) interface{} {
	if !wantValue {
		return nil
	}
	return []interface{}{}
}

func (t *TokenPattern) matchBetween(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	a, b, c := t.child(tbl, 0), t.child(tbl, 1), t.child(tbl, 2)
	ra := a.Match(tbl, input, pos, barrierPos, parameter, false, furthest)
	if !ra.Success {
		return FailElement
	}
	rb := b.Match(tbl, input, pos+ra.Length, barrierPos, parameter, wantValue, furthest)
	if !rb.Success {
		return FailElement
	}
	rc := c.Match(tbl, input, pos+ra.Length+rb.Length, barrierPos, parameter, false, furthest)
	if !rc.Success {
		return FailElement
	}
	total := ra.Length + rb.Length + rc.Length
	return Ok(pos, total, rb.IntermediateValue)
}

func (t *TokenPattern) matchFirstSecond(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError, first bool) ParsedElement {
	a, b := t.child(tbl, 0), t.child(tbl, 1)
	ra := a.Match(tbl, input, pos, barrierPos, parameter, wantValue && first, furthest)
	if !ra.Success {
		return FailElement
	}
	rb := b.Match(tbl, input, pos+ra.Length, barrierPos, parameter, wantValue && !first, furthest)
	if !rb.Success {
		return FailElement
	}
	total := ra.Length + rb.Length
	if first {
		return Ok(pos, total, ra.IntermediateValue)
	}
	return Ok(pos, total, rb.IntermediateValue)
}

func (t *TokenPattern) matchMap(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	res := c.Match(tbl, input, pos, barrierPos, parameter, true, furthest)
	if !res.Success {
		return FailElement
	}
	var value interface{}
	if wantValue && t.MapFunc != nil {
		value = t.MapFunc(res.IntermediateValue)
	}
	return Ok(pos, res.Length, value)
}

func (t *TokenPattern) matchReturn(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	res := c.Match(tbl, input, pos, barrierPos, parameter, false, furthest)
	if !res.Success {
		return FailElement
	}
	var value interface{}
	if wantValue {
		value = t.ReturnValue
	}
	return Ok(pos, res.Length, value)
}

func (t *TokenPattern) matchFailIf(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	res := c.Match(tbl, input, pos, barrierPos, parameter, true, furthest)
	if !res.Success {
		return FailElement
	}
	if t.FailIf != nil {
		if should, msg := t.FailIf(res.IntermediateValue); should {
			return t.fail(pos, msg, furthest)
		}
	}
	return res
}

func (t *TokenPattern) matchCaptureText(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	c := t.child(tbl, 0)
	res := c.Match(tbl, input, pos, barrierPos, parameter, false, furthest)
	if !res.Success {
		return FailElement
	}
	start, end := pos, pos+res.Length
	if t.TrimStart || t.TrimEnd {
		text := input[start:end]
		trimmed := trimRunes(text, t.TrimStart, t.TrimEnd)
		var value interface{}
		if wantValue {
			value = trimmed
		}
		return Ok(pos, res.Length, value)
	}
	var value interface{}
	if wantValue {
		value = input[start:end]
	}
	return Ok(pos, res.Length, value)
}

func trimRunes(s string, start, end bool) string {
	if start {
		for len(s) > 0 {
			r, n, ok := charAt(s, 0)
			if !ok || !isSpaceRune(r) {
				break
			}
			s = s[n:]
		}
	}
	if end {
		for len(s) > 0 {
			r, n, ok := lastRune(s)
			if !ok || !isSpaceRune(r) {
				break
			}
			s = s[:len(s)-n]
		}
	}
	return s
}

func isSpaceRune(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }

func lastRune(s string) (rune, int, bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	r := []rune(s)
	last := r[len(r)-1]
	return last, len(string(last)), true
}

func (t *TokenPattern) matchIf(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	ok := t.Cond != nil && t.Cond(parameter)
	var id int32
	if ok {
		id = t.ThenID
	} else {
		id = t.ElseID
	}
	if id < 0 {
		return t.fail(pos, "conditional branch not taken", furthest)
	}
	branch := tbl.get(id)
	return branch.Match(tbl, input, pos, barrierPos, parameter, wantValue, furthest)
}

func (t *TokenPattern) matchSkipWhitespaces(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	cur := pos
	for cur < barrierPos {
		r, n, ok := charAt(input, cur)
		if !ok || !isSpaceRune(r) {
			break
		}
		cur += uint64(n)
	}
	c := t.child(tbl, 0)
	res := c.Match(tbl, input, cur, barrierPos, parameter, wantValue, furthest)
	if !res.Success {
		return FailElement
	}
	return Ok(pos, cur-pos+res.Length, res.IntermediateValue)
}

func (t *TokenPattern) matchTextUntil(tbl *tokenTable, input string, pos, barrierPos uint64, parameter interface{}, wantValue bool, furthest *FurthestError) ParsedElement {
	stop := tbl.get(t.StopID)
	cur := pos
	for cur <= barrierPos {
		if cur < barrierPos || cur == uint64(len(input)) {
			if res := stop.Match(tbl, input, cur, barrierPos, parameter, false, furthest); res.Success {
				end := cur
				if t.ConsumeStop {
					end += res.Length
				}
				if end == pos && !t.AllowEmpty {
					return FailElement
				}
				var value interface{}
				if wantValue {
					value = input[pos:cur]
				}
				return Ok(pos, end-pos, value)
			}
		}
		if cur >= barrierPos {
			break
		}
		_, n, ok := charAt(input, cur)
		if !ok {
			break
		}
		cur += uint64(n)
	}
	if t.FailOnEOF {
		return t.fail(pos, "reached end of input before stop token", furthest)
	}
	if cur == pos && !t.AllowEmpty {
		return FailElement
	}
	var value interface{}
	if wantValue {
		value = input[pos:cur]
	}
	return Ok(pos, cur-pos, value)
}
