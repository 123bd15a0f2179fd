package scanless

// SkipKind tags which pre-parse whitespace/comment strategy a
// SkipStrategy implements (spec §2, §4.4).
type SkipKind int8

const (
	SkipNone SkipKind = iota
	SkipWhitespacesBuiltin
	SkipBeforeParsing
	SkipBeforeParsingGreedy
	SkipBeforeParsingLazy
	SkipTryParseThenSkip
	SkipTryParseThenSkipGreedy
	SkipTryParseThenSkipLazy
	SkipTryParseNonEmptyThenSkip
	SkipTryParseNonEmptyThenSkipGreedy
	SkipTryParseNonEmptyThenSkipLazy
)

// SkipStrategy is a rule-scoped policy for consuming whitespace/comments
// around a body match (spec §3, §4.4). Rule-based variants store the
// (already-compiled) skip rule ID; the skip rule is parsed with
// ErrorNoRecord and SkipNone in effect for its own descendants (the
// "configure for skip" contract of spec §4.4).
type SkipStrategy struct {
	ParserElement
	Kind   SkipKind
	RuleID int32 // -1 for SkipNone/SkipWhitespacesBuiltin
}

type skipTable struct {
	strategies []*SkipStrategy
}

func (st *skipTable) get(id int32) *SkipStrategy {
	if id < 0 || int(id) >= len(st.strategies) {
		return nil
	}
	return st.strategies[id]
}

// skipRuleSettings is the fixed settings snapshot the skip rule itself is
// parsed under (spec §4.4: "the skip rule is parsed with
// errorHandling=NoRecord and NoSkipping in its own children").
func skipRuleSettings(childEff effective) effective {
	eff := childEff
	eff.ErrorHandlingMode = ErrorNoRecord
	eff.SkippingStrategyID = -1
	return eff
}

// tryParse runs the skip strategy's rule once, returning the end position
// on success or (pos, false) on failure. It never advances ctx state on
// failure (consistent with the engine-wide "failure is local" policy).
func (s *SkipStrategy) tryParse(p *Parser, ctx *Context, pos uint64, childEff effective) (uint64, bool) {
	rule := p.rules.get(s.RuleID)
	if rule == nil {
		return pos, false
	}
	res := rule.parse(p, ctx, pos, skipRuleSettings(childEff))
	if !res.Success() {
		return pos, false
	}
	return pos + res.length, true
}

// applyBefore runs the strategy's "skip before body" behavior and returns
// the position the rule body should then attempt to match at. The
// TryParseThenSkip family does NOT skip here (it only skips after a
// failed body attempt); for those kinds applyBefore is a no-op and the
// actual retry is driven from ParserRule.parse via afterBodyFailure.
func (s *SkipStrategy) applyBefore(p *Parser, ctx *Context, pos uint64, childEff effective) uint64 {
	switch s.Kind {
	case SkipNone:
		return pos
	case SkipWhitespacesBuiltin:
		cur := pos
		for cur < ctx.MaxPosition {
			r, n, ok := charAt(ctx.Input, cur)
			if !ok || !isSpaceRune(r) {
				break
			}
			cur += uint64(n)
		}
		return cur
	case SkipBeforeParsing:
		if end, ok := s.tryParse(p, ctx, pos, childEff); ok {
			return end
		}
		return pos
	case SkipBeforeParsingGreedy:
		cur := pos
		for {
			end, ok := s.tryParse(p, ctx, cur, childEff)
			if !ok || end == cur {
				break
			}
			cur = end
		}
		return cur
	case SkipBeforeParsingLazy:
		// Pinned semantics (DESIGN.md Open Question #1): a single skip
		// attempt, performed unconditionally before the body's first try.
		// Whether the body would have matched without it is not checked.
		if end, ok := s.tryParse(p, ctx, pos, childEff); ok {
			return end
		}
		return pos
	default:
		// TryParseThenSkip family: no skipping before the first attempt.
		return pos
	}
}

// afterBodyFailure implements the "try body first, then skip and retry"
// strategies (spec §4.4). ParserRule.parse also calls it when the body
// succeeded with a zero-length match under a NonEmpty variant, which
// treats that as "not yet".
func (s *SkipStrategy) afterBodyFailure(p *Parser, ctx *Context, pos uint64, childEff effective, retryBody func(uint64) ParsedRule) ParsedRule {
	switch s.Kind {
	case SkipTryParseThenSkip, SkipTryParseNonEmptyThenSkip:
		if end, ok := s.tryParse(p, ctx, pos, childEff); ok {
			return retryBody(end)
		}
		return RuleFail
	case SkipTryParseThenSkipGreedy, SkipTryParseNonEmptyThenSkipGreedy:
		cur := pos
		for {
			end, ok := s.tryParse(p, ctx, cur, childEff)
			if !ok || end == cur {
				break
			}
			cur = end
			if res := retryBody(cur); res.Success() {
				return res
			}
		}
		return RuleFail
	case SkipTryParseThenSkipLazy, SkipTryParseNonEmptyThenSkipLazy:
		// Pinned semantics: alternate skip/retry exactly once (DESIGN.md
		// Open Question #1).
		if end, ok := s.tryParse(p, ctx, pos, childEff); ok {
			return retryBody(end)
		}
		return RuleFail
	default:
		return RuleFail
	}
}

// isTryThenSkip reports whether this strategy retries the body after a
// failed/empty first attempt rather than skipping up front.
func (s *SkipStrategy) isTryThenSkip() bool {
	switch s.Kind {
	case SkipTryParseThenSkip, SkipTryParseThenSkipGreedy, SkipTryParseThenSkipLazy,
		SkipTryParseNonEmptyThenSkip, SkipTryParseNonEmptyThenSkipGreedy, SkipTryParseNonEmptyThenSkipLazy:
		return true
	default:
		return false
	}
}

// treatsEmptyAsFailure reports whether a zero-length body success should
// still trigger the "then skip" retry (the NonEmpty variants).
func (s *SkipStrategy) treatsEmptyAsFailure() bool {
	switch s.Kind {
	case SkipTryParseNonEmptyThenSkip, SkipTryParseNonEmptyThenSkipGreedy, SkipTryParseNonEmptyThenSkipLazy:
		return true
	default:
		return false
	}
}

// FindAllMatches implements spec §4.4's scan helper shared by all
// strategies: iterate positions, at each perform one skip+parse attempt,
// and on success yield the match and advance past it (or by one position
// if overlap is requested).
func FindAllMatches(p *Parser, rule *ParserRule, ctx *Context, overlap bool) []ParsedRule {
	var out []ParsedRule
	pos := uint64(0)
	max := ctx.MaxPosition
	for pos <= max {
		res := rule.parse(p, ctx, pos, effective{SkipRuleID: -1, SkippingStrategyID: -1, ErrorHandlingMode: ErrorNoRecord})
		if res.Success() {
			out = append(out, res)
			if res.length == 0 || overlap {
				pos++
			} else {
				pos += res.length
			}
			continue
		}
		pos++
	}
	return out
}
