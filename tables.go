package scanless

// tokenTable is the compiled, flat token-pattern table (spec §3: "two
// flat tables with stable integer IDs"). IDs are dense indices.
type tokenTable struct {
	tokens []*TokenPattern
}

func (tt *tokenTable) get(id int32) *TokenPattern {
	if id < 0 || int(id) >= len(tt.tokens) {
		return nil
	}
	return tt.tokens[id]
}

// ruleTable is the compiled, flat parser-rule table.
type ruleTable struct {
	rules []*ParserRule
}

func (rt *ruleTable) get(id int32) *ParserRule {
	if id < 0 || int(id) >= len(rt.rules) {
		return nil
	}
	return rt.rules[id]
}
