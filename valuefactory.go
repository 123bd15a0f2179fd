package scanless

// ValueFactory computes a rule's semantic value lazily from its already-
// matched node (spec §4.3 "parsed_value_factory"). It receives the node
// by value: children count, child values (computed on demand, which
// recurses lazily), raw text and intermediate value are all available
// through the ParsedRule API.
type ValueFactory func(node ParsedRule) interface{}

// Identity returns the node's own intermediate value, unchanged. This is
// the default factory for Token rules.
func Identity(node ParsedRule) interface{} {
	return node.intermediateValue
}

// Select builds a factory that returns the value of the i'th child.
func Select(i int) ValueFactory {
	return func(node ParsedRule) interface{} {
		if i < 0 || i >= node.ChildCount() {
			return nil
		}
		child := node.Child(i)
		return child.Value()
	}
}

// FoldLeft builds a factory that reduces child values left-to-right
// starting from seed.
func FoldLeft(seed interface{}, combine func(acc, next interface{}) interface{}) ValueFactory {
	return func(node ParsedRule) interface{} {
		acc := seed
		for _, v := range node.ChildValues() {
			acc = combine(acc, v)
		}
		return acc
	}
}

// FoldRight builds a factory that reduces child values right-to-left
// starting from seed.
func FoldRight(seed interface{}, combine func(next, acc interface{}) interface{}) ValueFactory {
	return func(node ParsedRule) interface{} {
		values := node.ChildValues()
		acc := seed
		for i := len(values) - 1; i >= 0; i-- {
			acc = combine(values[i], acc)
		}
		return acc
	}
}

// AllChildren returns every child's value as a []interface{}; the default
// factory for Repeat/SeparatedRepeat.
func AllChildren(node ParsedRule) interface{} {
	vals := node.ChildValues()
	if vals == nil {
		return []interface{}{}
	}
	return vals
}

// defaultValueFactory implements spec §4.3's per-kind defaults when a
// rule carries no explicit ParsedValueFactory:
//
//	Token            -> intermediate value
//	Sequence         -> first child's value
//	Optional         -> child value or nil
//	Repeat/SepRepeat -> array of child values
//	Choice           -> selected child's value (it only ever has one child)
//	Custom           -> intermediate value, if any
func defaultValueFactory(kind RuleKind, node ParsedRule) interface{} {
	switch kind {
	case RuleToken:
		return node.intermediateValue
	case RuleSequence:
		if node.ChildCount() == 0 {
			return nil
		}
		child := node.Child(0)
		return child.Value()
	case RuleOptional:
		if node.ChildCount() == 0 {
			return nil
		}
		child := node.Child(0)
		return child.Value()
	case RuleRepeat, RuleSeparatedRepeat:
		return AllChildren(node)
	case RuleChoice:
		if node.ChildCount() == 0 {
			return nil
		}
		child := node.Child(0)
		return child.Value()
	default:
		return node.intermediateValue
	}
}
