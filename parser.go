package scanless

import (
	"errors"
	"fmt"

	"github.com/scanlessgo/scanless/errs"
)

// errNotReparsable is returned by ParsedRule.Reparsed when the node was not
// produced by a live Parser (e.g. the zero value, or a node detached from
// its originating parse).
var errNotReparsable = errors.New("scanless: node has no parser to reparse against")

// Parser is the compiled, immutable form of a Grammar (spec §3). A single
// Parser is safe for concurrent use by multiple goroutines, each driving
// its own Context via Parse/ParseRule/MatchToken; no shared mutable state
// is touched outside of a Context.
type Parser struct {
	tokens           *tokenTable
	rules            *ruleTable
	skipStrategies   *skipTable
	recoveries       *recoveryTable
	barrierTokenizer BarrierTokenizer
	walkTraceLimit   int

	mainRuleID    int32
	ruleNameToID  map[string]int32
	tokenNameToID map[string]int32
}

// tokenTbl exposes the compiled token table to token-matching code that
// needs to recurse into child tokens (TokenPattern.Match's first argument).
func (p *Parser) tokenTbl() *tokenTable { return p.tokens }

// leafNode builds a ParsedRule with no children (RuleToken matches).
func (p *Parser) leafNode(ruleID int32, start, length uint64, passedBarriers uint32, value interface{}) ParsedRule {
	return ParsedRule{
		RuleID:              ruleID,
		start:               start,
		length:              length,
		passedBarriersAfter: passedBarriers,
		intermediateValue:   value,
		ctx:                 nil, // filled in by attachContext before being returned to a caller
		parser:              p,
	}
}

// branchNode builds a ParsedRule whose children live in ctx's arena at
// [childOffset, childOffset+childCount).
func (p *Parser) branchNode(ruleID int32, start, length uint64, passedBarriers uint32, childOffset, childCount int) ParsedRule {
	return ParsedRule{
		RuleID:              ruleID,
		start:               start,
		length:              length,
		passedBarriersAfter: passedBarriers,
		childOffset:         childOffset,
		childCount:          childCount,
		parser:              p,
	}
}

// ParseOption configures one call to Parse/ParseRule/MatchToken.
type ParseOption func(*parseConfig)

type parseConfig struct {
	flags RenderFlagsOption
}

// RenderFlagsOption mirrors errs.RenderFlags for the public API, so callers
// don't need to import the errs package for the common case.
type RenderFlagsOption struct {
	DisplayRules    bool
	DisplayMessages bool
	MoreGroups      bool
}

// WithRenderFlags controls how a returned *errs.ParsingError renders.
func WithRenderFlags(flags RenderFlagsOption) ParseOption {
	return func(c *parseConfig) { c.flags = flags }
}

// Parse runs the grammar's designated main rule against input (spec §3
// "Parser.parse"). parameter is threaded through the whole parse as
// ctx.Parameter, available to CondFn/CustomFn callbacks.
func (p *Parser) Parse(input string, parameter interface{}, opts ...ParseOption) (ParsedRule, error) {
	return p.parseNamed(p.mainRuleID, input, parameter, opts...)
}

// ParseRule runs a single named rule (not necessarily the main rule)
// against input. Used directly by callers that want to parse a grammar
// fragment, and internally by ParsedRule.Reparsed.
func (p *Parser) ParseRule(name string, input string, parameter interface{}, opts ...ParseOption) (ParsedRule, error) {
	id, ok := p.ruleNameToID[name]
	if !ok {
		return RuleFail, fmt.Errorf("scanless: unknown rule %q", name)
	}
	return p.parseNamed(id, input, parameter, opts...)
}

func (p *Parser) parseNamed(ruleID int32, input string, parameter interface{}, opts ...ParseOption) (ParsedRule, error) {
	cfg := parseConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	rule := p.rules.get(ruleID)
	if rule == nil {
		return RuleFail, fmt.Errorf("scanless: unknown rule id %d", ruleID)
	}
	tracer().Debugf("parsing rule %q (%d bytes of input)", rule.PrimaryName(), len(input))
	ctx := newContext(p, input, parameter)
	result := rule.parse(p, ctx, 0, effective{SkipRuleID: -1, SkippingStrategyID: -1, ErrorHandlingMode: ErrorDefault})
	result = attachContext(result, ctx)

	if result.Success() && rule.RequireEOF && result.start+result.length != uint64(len(input)) {
		ctx.recordError(ErrorDefault, result.start+result.length, rule.ID, rule.PrimaryName(), "expected end of input", false)
		result = RuleFail
	}

	if result.Success() {
		tracer().Debugf("parse succeeded: %d..%d", result.start, result.start+result.length)
		return result, nil
	}
	tracer().Debugf("parse failed: %d errors recorded", len(ctx.errors))
	return RuleFail, p.buildError(ctx, cfg)
}

// attachContext rewrites every node reachable from result (result itself
// and, transitively, every node already appended to ctx's arena) so its ctx
// pointer is set. Leaf/branch nodes are built before ctx exists as a
// pointer target in some call paths (rule.go constructs them via
// Parser.leafNode/branchNode without a ctx argument), so this is applied
// once, at the top, after a parse completes.
func attachContext(n ParsedRule, ctx *Context) ParsedRule {
	n.ctx = ctx
	for i := range ctx.arena.children {
		ctx.arena.children[i].ctx = ctx
	}
	return n
}

// MatchToken matches a single named token pattern (not a rule) against
// input at position 0, mainly useful for unit-testing token definitions in
// isolation (spec §3 exposes Parser as owning both tables).
func (p *Parser) MatchToken(name string, input string, parameter interface{}) (interface{}, error) {
	id, ok := p.tokenNameToID[name]
	if !ok {
		return nil, fmt.Errorf("scanless: unknown token %q", name)
	}
	tok := p.tokens.get(id)
	var furthest FurthestError
	res := tok.Match(p.tokens, input, 0, uint64(len(input)), parameter, true, &furthest)
	if !res.Success {
		return nil, fmt.Errorf("scanless: token %q failed to match: %s", name, furthest.Message)
	}
	return res.IntermediateValue, nil
}

// FindAllMatches scans the whole of input for every (non-overlapping,
// unless overlap is requested) match of the named rule (spec §4.4).
func (p *Parser) FindAllMatches(ruleName, input string, parameter interface{}, overlap bool) ([]ParsedRule, error) {
	id, ok := p.ruleNameToID[ruleName]
	if !ok {
		return nil, fmt.Errorf("scanless: unknown rule %q", ruleName)
	}
	rule := p.rules.get(id)
	ctx := newContext(p, input, parameter)
	matches := FindAllMatches(p, rule, ctx, overlap)
	for i := range matches {
		matches[i] = attachContext(matches[i], ctx)
	}
	return matches, nil
}

// buildError assembles the outermost *errs.ParsingError from a failed
// parse's context (spec §7).
func (p *Parser) buildError(ctx *Context, cfg parseConfig) *errs.ParsingError {
	line, col := errs.LineColumn(ctx.Input, ctx.furthest.Position)
	var expected []string
	if ctx.furthest.Set() {
		expected = []string{ctx.furthest.ElementName}
	}
	var stack []errs.Frame
	for _, f := range ctx.stack.Frames() {
		stack = append(stack, errs.Frame{ElementName: f.ElementName, Position: f.Position})
	}
	return &errs.ParsingError{
		Input:      ctx.Input,
		Collection: ctx.collection(),
		Line:       line,
		Column:     col,
		Expected:   expected,
		Stack:      stack,
		Flags: errs.RenderFlags{
			DisplayRules:    cfg.flags.DisplayRules,
			DisplayMessages: cfg.flags.DisplayMessages,
			MoreGroups:      cfg.flags.MoreGroups,
		},
	}
}
