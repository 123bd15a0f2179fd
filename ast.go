package scanless

import "github.com/scanlessgo/scanless/errs"

// ParsedRule is a lazy AST node (spec §3, §4.8): it carries its span and a
// (offset,count) view into the owning parse's child arena rather than a
// private child slice, to avoid a per-node allocation (spec §9).
//
// A ParsedRule is a value type; copying it is cheap and safe. Reading
// Value() the first time runs the rule's value factory and memoizes the
// result on *this* copy only — callers that want memoization visible
// across copies should keep the node obtained from Children()/the root
// AST rather than re-deriving it.
type ParsedRule struct {
	RuleID              int32
	start, length       uint64
	passedBarriersAfter uint32
	childOffset         int
	childCount          int
	intermediateValue   interface{}

	value         interface{}
	valueComputed bool

	ctx    *Context
	parser *Parser
}

// Success reports whether this node represents a successful match
// (spec §3: "success ⇔ rule_id ≥ 0").
func (n ParsedRule) Success() bool { return n.RuleID >= 0 }

// Start returns the node's start offset in the input.
func (n ParsedRule) Start() uint64 { return n.start }

// Length returns the node's length in the input.
func (n ParsedRule) Length() uint64 { return n.length }

// Span returns (Start, Start+Length) as a Span.
func (n ParsedRule) Span() Span { return Span{n.start, n.start + n.length} }

// Text returns the raw input slice this node covers.
func (n ParsedRule) Text() string {
	if n.ctx == nil {
		return ""
	}
	return n.ctx.Input[n.start : n.start+n.length]
}

// PassedBarriersAfter is the passed-barriers counter's value immediately
// after this node finished matching.
func (n ParsedRule) PassedBarriersAfter() uint32 { return n.passedBarriersAfter }

// ChildCount returns the number of direct children.
func (n ParsedRule) ChildCount() int { return n.childCount }

// Child returns the i'th direct child (0-based). Panics if out of range,
// matching slice-indexing semantics elsewhere in the package.
func (n ParsedRule) Child(i int) ParsedRule {
	if i < 0 || i >= n.childCount {
		panic("scanless: child index out of range")
	}
	return n.ctx.arena.children[n.childOffset+i]
}

// Children returns a snapshot slice of all direct children.
func (n ParsedRule) Children() []ParsedRule {
	if n.childCount == 0 {
		return nil
	}
	out := make([]ParsedRule, n.childCount)
	copy(out, n.ctx.arena.children[n.childOffset:n.childOffset+n.childCount])
	return out
}

// ChildValues returns the (lazily computed) Value() of every direct
// child, in order. Used by the standard Repeat/SeparatedRepeat/Sequence
// value factories.
func (n ParsedRule) ChildValues() []interface{} {
	if n.childCount == 0 {
		return nil
	}
	out := make([]interface{}, n.childCount)
	for i := 0; i < n.childCount; i++ {
		out[i] = n.ctx.arena.children[n.childOffset+i].Value()
	}
	return out
}

// RuleName returns the primary name of the rule this node was produced
// by, or "" if the node has no parser attached (e.g. the zero value).
func (n ParsedRule) RuleName() string {
	if n.parser == nil {
		return ""
	}
	if r := n.parser.rules.get(n.RuleID); r != nil {
		return r.PrimaryName()
	}
	return ""
}

// Value computes (once) and returns this node's semantic value by
// invoking its rule's ParsedValueFactory, or a variant-appropriate
// default if none was supplied (spec §4.3 "Value attachment").
func (n *ParsedRule) Value() interface{} {
	if n.valueComputed {
		return n.value
	}
	n.valueComputed = true
	if !n.Success() {
		return nil
	}
	rule := n.parser.rules.get(n.RuleID)
	if rule == nil {
		return nil
	}
	if rule.ParsedValueFactory != nil {
		n.value = rule.ParsedValueFactory(*n)
		return n.value
	}
	n.value = defaultValueFactory(rule.Kind, *n)
	return n.value
}

// Errors returns every error recorded during the parse that produced this
// node, in recording order (spec §7). A successfully recovered rule (spec
// §8 scenario 5) still leaves its original failure here even though n
// itself reports Success() == true. A failed parse returns RuleFail, whose
// Errors is nil; its errors are in the returned *errs.ParsingError.
func (n ParsedRule) Errors() []errs.ParseError {
	if n.ctx == nil {
		return nil
	}
	return n.ctx.errors
}

// Collection builds the same errs.Collection snapshot Parser.buildError
// uses for a failed parse's *errs.ParsingError, letting a caller inspect
// recorded errors and recovery points on a successful parse too.
func (n ParsedRule) Collection() *errs.Collection {
	if n.ctx == nil {
		return nil
	}
	return n.ctx.collection()
}

// Optimized returns a flattened view that omits single-child nodes whose
// only purpose was structural (spec §4.8 "optimized()"): a node with
// exactly one child and no explicit value factory collapses into that
// child. The root call on an already-optimal tree is a cheap no-op.
func (n ParsedRule) Optimized() ParsedRule {
	cur := n
	for cur.Success() && cur.childCount == 1 {
		rule := cur.parser.rules.get(cur.RuleID)
		if rule == nil || rule.ParsedValueFactory != nil {
			break
		}
		cur = cur.Child(0)
	}
	return cur
}

// Reparsed is the optional incremental-reparse hook of spec §6. The core
// implementation here always performs a full reparse anchored at the same
// rule that produced n (spec §1 Non-goals: a production-grade incremental
// implementation is optional, the hook itself is not).
func (n ParsedRule) Reparsed(newInput string) (ParsedRule, error) {
	if n.parser == nil {
		return RuleFail, errNotReparsable
	}
	name := n.RuleName()
	if name == "" {
		return n.parser.ParseRule("", newInput, n.ctx.Parameter)
	}
	return n.parser.ParseRule(name, newInput, n.ctx.Parameter)
}
