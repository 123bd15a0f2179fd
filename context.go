package scanless

import (
	"github.com/scanlessgo/scanless/errs"
	"github.com/scanlessgo/scanless/runtime"
)

// cacheKey is the memoization key of spec §4.7: a rule's result is a pure
// function of (ruleID, position, passedBarriers) once settings are fixed
// at compile time (see DESIGN.md "Cache correctness note").
type cacheKey struct {
	ruleID         int32
	position       uint64
	passedBarriers uint32
}

// arena is the per-parse growing buffer AST children are appended to, so
// ParsedRule nodes can reference a (offset, count) span instead of holding
// their own per-node slice (spec §9 "Arena for AST children").
type arena struct {
	children []ParsedRule
}

func (a *arena) append(nodes ...ParsedRule) (offset, count int) {
	offset = len(a.children)
	a.children = append(a.children, nodes...)
	return offset, len(nodes)
}

// Context is the per-parse state (spec §3 ParserContext). A fresh Context
// is created for every call to Parser.Parse/ParseRule/FindAllMatches and
// discarded once the caller is done; it must not be reused across parses.
type Context struct {
	Input          string
	Position       uint64
	MaxPosition    uint64
	PassedBarriers uint32
	Parameter      interface{}

	barrierMap *BarrierTokenMap

	errors          []errs.ParseError
	recoveryIndices []uint64
	furthest        FurthestError

	cache map[cacheKey]ParsedRule
	arena arena

	stack     runtime.CallStack
	walkTrace *runtime.WalkTrace

	parser *Parser
}

func newContext(p *Parser, input string, parameter interface{}) *Context {
	ctx := &Context{
		Input:       input,
		MaxPosition: uint64(len(input)),
		Parameter:   parameter,
		barrierMap:  EmptyBarrierTokenMap(),
		cache:       make(map[cacheKey]ParsedRule),
		parser:      p,
	}
	if p.barrierTokenizer != nil {
		if vts, err := p.barrierTokenizer.Tokenize(input); err == nil {
			ctx.barrierMap = NewBarrierTokenMap(vts)
		}
	}
	if p.walkTraceLimit > 0 {
		ctx.walkTrace = runtime.NewWalkTrace(p.walkTraceLimit)
	}
	return ctx
}

// recordError appends a failure to the context's error list, honoring the
// element's error-handling mode (spec §7).
func (ctx *Context) recordError(mode ErrorHandling, position uint64, elementID int32, elementName, message string, hidden bool) {
	if mode == ErrorNoRecord {
		return
	}
	frame := errs.Frame{}
	stackFrames := ctx.stack.Frames()
	frames := make([]errs.Frame, 0, len(stackFrames))
	for _, f := range stackFrames {
		frames = append(frames, errs.Frame{ElementName: f.ElementName, Position: f.Position})
	}
	_ = frame
	ctx.errors = append(ctx.errors, errs.ParseError{
		Kind:        errs.RuleMatchFail,
		Position:    position,
		ElementID:   elementID,
		ElementName: elementName,
		Message:     message,
		Hidden:      hidden,
		Stack:       frames,
	})
}

// pushRecoveryIndex records that error recovery resumed parsing at idx
// (spec §4.6: "the index of the recovery point is pushed into
// ctx.recovery_indices").
func (ctx *Context) pushRecoveryIndex(idx uint64) {
	ctx.recoveryIndices = append(ctx.recoveryIndices, idx)
}

// cacheGet/cachePut implement the memoization layer of spec §4.7.
func (ctx *Context) cacheGet(ruleID int32, position uint64) (ParsedRule, bool) {
	r, ok := ctx.cache[cacheKey{ruleID, position, ctx.PassedBarriers}]
	return r, ok
}

func (ctx *Context) cachePut(ruleID int32, position uint64, result ParsedRule) {
	ctx.cache[cacheKey{ruleID, position, ctx.PassedBarriers}] = result
}

// Collection builds the errs.Collection snapshot used for final error
// reporting.
func (ctx *Context) collection() *errs.Collection {
	var walk []string
	if ctx.walkTrace != nil {
		walk = ctx.walkTrace.Entries()
	}
	return &errs.Collection{
		Errors:          ctx.errors,
		RecoveryIndices: ctx.recoveryIndices,
		WalkTrace:       walk,
	}
}
