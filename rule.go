package scanless

// RuleKind tags which variant a ParserRule is (spec §4.3).
type RuleKind int8

const (
	RuleToken RuleKind = iota
	RuleSequence
	RuleChoice
	RuleOptional
	RuleRepeat
	RuleSeparatedRepeat
	RuleCustom
)

// CustomFn implements a user-supplied rule body (spec §4.3 Custom). It may
// recursively dispatch to its own children via parse.
type CustomFn func(p *Parser, ctx *Context, rule *ParserRule, pos uint64, eff effective) ParsedRule

// ParserRule is a tree matcher that builds AST nodes (spec §3, §4.3).
type ParserRule struct {
	ParserElement
	Kind RuleKind

	TokenID int32 // RuleToken

	Children []int32 // Sequence/Choice/Optional(1)/Repeat(1)/SeparatedRepeat(item,sep)/Custom

	MinCount               int // Repeat/SeparatedRepeat
	MaxCount               int
	AllowTrailingSeparator bool
	IncludeSeparators      bool

	Custom CustomFn

	Settings         LocalSettings
	ErrorRecoveryID  int32 // -1 if none
	ParsedValueFactory ValueFactory

	FirstChars             *FirstCharSet
	FirstCharDeterministic bool
	IsOptional             bool

	RequireEOF bool // honored for the rule a Parse or ParseRule call starts at
}

// RuleFail is the sentinel value for a failed rule match (spec §3:
// "success ⇔ rule_id >= 0").
var RuleFail = ParsedRule{RuleID: -1}

// parse implements the state machine of spec §4.3:
//
//	resolve_settings -> advance_context -> skip? -> match_body -> {Success, Fail}
func (r *ParserRule) parse(p *Parser, ctx *Context, pos uint64, inherited effective) ParsedRule {
	eff := resolveForSelf(r.Settings, inherited)
	childEff := resolveForChildren(r.Settings, inherited)

	if r.HasFlag(FlagStackTrace) {
		ctx.stack.Push(r.PrimaryName(), pos)
		defer ctx.stack.Pop()
	}

	if r.HasFlag(FlagEnableMemoization) {
		if cached, ok := ctx.cacheGet(r.ID, pos); ok {
			return cached
		}
	}

	var strat *SkipStrategy
	if eff.SkippingStrategyID >= 0 {
		strat = p.skipStrategies.get(eff.SkippingStrategyID)
	}

	preRecordErrCount := len(ctx.errors)

	var result ParsedRule
	if strat != nil && strat.isTryThenSkip() {
		result = r.matchBody(p, ctx, pos, eff, childEff)
		needsRetry := !result.Success() || (strat.treatsEmptyAsFailure() && result.length == 0)
		if needsRetry {
			retry := func(at uint64) ParsedRule { return r.matchBody(p, ctx, at, eff, childEff) }
			if retried := strat.afterBodyFailure(p, ctx, pos, childEff, retry); retried.Success() {
				result = retried
			}
		}
	} else {
		skipped := pos
		if strat != nil {
			skipped = strat.applyBefore(p, ctx, pos, childEff)
		}
		result = r.matchBody(p, ctx, skipped, eff, childEff)
	}

	// record_error (spec §4.3): fires unconditionally on body failure,
	// before error_recovery runs, so a rule that fails and then
	// successfully recovers still leaves exactly one error at the gap
	// position (spec §8 scenario 5). matchBody may already have recorded
	// a more specific message (e.g. barrier mismatch); only fall back to
	// the generic message if it didn't.
	if !result.Success() {
		// A child rule's own failure already appended its own error tagged
		// with the child's element ID, not r's; only matchToken's direct
		// barrier-mismatch call (rule.go matchToken) tags an entry with
		// r.ID itself, so checking ElementID (not just error count) keeps
		// ordinary sequence/choice failures still recording their own
		// generic entry.
		bodyAlreadyRecorded := len(ctx.errors) > preRecordErrCount && ctx.errors[len(ctx.errors)-1].ElementID == r.ID
		if !bodyAlreadyRecorded {
			if eff.ErrorHandlingMode == ErrorThrow {
				ctx.recordError(ErrorDefault, pos, r.ID, r.PrimaryName(), "grammar assertion failed", false)
			} else {
				ctx.recordError(eff.ErrorHandlingMode, pos, r.ID, r.PrimaryName(), "expected "+r.PrimaryName(), r.ErrorHandlingMode() == ErrorNoRecord)
			}
		}
	}

	if !result.Success() && r.ErrorRecoveryID >= 0 {
		if rec := p.recoveries.get(r.ErrorRecoveryID); rec != nil {
			if recovered, ok := rec.recover(p, ctx, r, pos, inherited, eff, childEff); ok {
				result = recovered
			}
		}
	}

	if pos > ctx.MaxPosition {
		ctx.MaxPosition = pos
	}
	if result.Success() && result.start+result.length > ctx.MaxPosition {
		ctx.MaxPosition = result.start + result.length
	}

	if r.HasFlag(FlagEnableMemoization) {
		ctx.cachePut(r.ID, pos, result)
	}
	if r.HasFlag(FlagWalkTrace) && ctx.walkTrace != nil {
		ctx.walkTrace.Record("%s @%d success=%t", r.PrimaryName(), pos, result.Success())
	}
	return result
}

// ErrorHandlingMode is a convenience accessor mirroring the field name
// used by TokenPattern, so recordError's hidden-flag computation reads
// uniformly for both.
func (r *ParserRule) ErrorHandlingMode() ErrorHandling { return r.Settings.ErrorHandlingMode }

func (r *ParserRule) matchBody(p *Parser, ctx *Context, pos uint64, eff, childEff effective) ParsedRule {
	barrierPos := restrictedBarrier(ctx.MaxPosition, ctx.barrierMap, pos, ctx.PassedBarriers)
	switch r.Kind {
	case RuleToken:
		return r.matchToken(p, ctx, pos, barrierPos, eff)
	case RuleSequence:
		return r.matchSequence(p, ctx, pos, childEff)
	case RuleChoice:
		return r.matchChoice(p, ctx, pos, childEff)
	case RuleOptional:
		return r.matchOptional(p, ctx, pos, childEff)
	case RuleRepeat:
		return r.matchRepeat(p, ctx, pos, childEff)
	case RuleSeparatedRepeat:
		return r.matchSeparatedRepeat(p, ctx, pos, childEff)
	case RuleCustom:
		if r.Custom != nil {
			return r.Custom(p, ctx, r, pos, childEff)
		}
		return RuleFail
	default:
		return RuleFail
	}
}

func (r *ParserRule) matchToken(p *Parser, ctx *Context, pos, barrierPos uint64, eff effective) ParsedRule {
	tok := p.tokens.get(r.TokenID)
	if !eff.IgnoreBarriers {
		if vt, ok := ctx.barrierMap.Lookup(pos, ctx.PassedBarriers); ok {
			if vt.TokenID == r.TokenID {
				ctx.PassedBarriers++
				return p.leafNode(r.ID, pos, vt.Length, ctx.PassedBarriers, nil)
			}
			ctx.recordError(eff.ErrorHandlingMode, pos, r.ID, r.PrimaryName(), "barrier mismatch", false)
			return RuleFail
		} else if next := ctx.barrierMap.NextBarrierPosition(pos, ctx.PassedBarriers); next != noBarrier {
			barrierPos = minU64(barrierPos, next)
		}
	}
	res := tok.Match(p.tokenTbl(), ctx.Input, pos, barrierPos, ctx.Parameter, true, &ctx.furthest)
	if !res.Success {
		return RuleFail
	}
	return p.leafNode(r.ID, pos, res.Length, ctx.PassedBarriers, res.IntermediateValue)
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func (r *ParserRule) matchSequence(p *Parser, ctx *Context, pos uint64, eff effective) ParsedRule {
	cur := pos
	var nodes []ParsedRule
	for _, cid := range r.Children {
		child := p.rules.get(cid)
		res := child.parse(p, ctx, cur, eff)
		if !res.Success() {
			return RuleFail
		}
		cur += res.length
		nodes = append(nodes, res)
	}
	off, cnt := ctx.arena.append(nodes...)
	return p.branchNode(r.ID, pos, cur-pos, ctx.PassedBarriers, off, cnt)
}

func (r *ParserRule) matchChoice(p *Parser, ctx *Context, pos uint64, eff effective) ParsedRule {
	for _, cid := range r.Children {
		child := p.rules.get(cid)
		if res := child.parse(p, ctx, pos, eff); res.Success() {
			off, cnt := ctx.arena.append(res)
			return p.branchNode(r.ID, pos, res.length, ctx.PassedBarriers, off, cnt)
		}
	}
	return RuleFail
}

func (r *ParserRule) matchOptional(p *Parser, ctx *Context, pos uint64, eff effective) ParsedRule {
	child := p.rules.get(r.Children[0])
	if res := child.parse(p, ctx, pos, eff); res.Success() {
		off, cnt := ctx.arena.append(res)
		return p.branchNode(r.ID, pos, res.length, ctx.PassedBarriers, off, cnt)
	}
	return p.branchNode(r.ID, pos, 0, ctx.PassedBarriers, 0, 0)
}

func (r *ParserRule) matchRepeat(p *Parser, ctx *Context, pos uint64, eff effective) ParsedRule {
	child := p.rules.get(r.Children[0])
	cur := pos
	var nodes []ParsedRule
	count := 0
	for r.MaxCount == 0 || count < r.MaxCount {
		res := child.parse(p, ctx, cur, eff)
		if !res.Success() {
			break
		}
		nodes = append(nodes, res)
		cur += res.length
		count++
		if res.length == 0 {
			break
		}
	}
	if count < r.MinCount {
		return RuleFail
	}
	off, cnt := ctx.arena.append(nodes...)
	return p.branchNode(r.ID, pos, cur-pos, ctx.PassedBarriers, off, cnt)
}

func (r *ParserRule) matchSeparatedRepeat(p *Parser, ctx *Context, pos uint64, eff effective) ParsedRule {
	item := p.rules.get(r.Children[0])
	sep := p.rules.get(r.Children[1])
	cur := pos
	var nodes []ParsedRule
	first := item.parse(p, ctx, cur, eff)
	if !first.Success() {
		if r.MinCount == 0 {
			off, cnt := ctx.arena.append()
			return p.branchNode(r.ID, pos, 0, ctx.PassedBarriers, off, cnt)
		}
		return RuleFail
	}
	cur += first.length
	nodes = append(nodes, first)
	count := 1
	for r.MaxCount == 0 || count < r.MaxCount {
		sepRes := sep.parse(p, ctx, cur, eff)
		if !sepRes.Success() {
			break
		}
		itemRes := item.parse(p, ctx, cur+sepRes.length, eff)
		if !itemRes.Success() {
			if r.AllowTrailingSeparator {
				cur += sepRes.length
				if r.IncludeSeparators {
					nodes = append(nodes, sepRes)
				}
			}
			break
		}
		cur += sepRes.length + itemRes.length
		if r.IncludeSeparators {
			nodes = append(nodes, sepRes)
		}
		nodes = append(nodes, itemRes)
		count++
	}
	if count < r.MinCount {
		return RuleFail
	}
	off, cnt := ctx.arena.append(nodes...)
	return p.branchNode(r.ID, pos, cur-pos, ctx.PassedBarriers, off, cnt)
}
