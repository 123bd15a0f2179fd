package runtime

import "fmt"

// Kind distinguishes the two tables a compiled parser maintains
// (spec §3: "two parallel element tables").
type Kind int8

const (
	// KindToken identifies an entry in the token-pattern table.
	KindToken Kind = iota
	// KindRule identifies an entry in the parser-rule table.
	KindRule
)

func (k Kind) String() string {
	if k == KindToken {
		return "token"
	}
	return "rule"
}

// Ref is a resolved (or reserved) named reference: which table it lives
// in, and its integer ID.
type Ref struct {
	Kind Kind
	ID   int32
}

// NameRegistry maps names to element references. Registering every name
// before any body is resolved is what allows named references to form
// cycles. Compile does not use this type: its first pass keeps its own
// name-to-ID maps (see dedupTokens/dedupRules in the scanless package).
//
// Adapted from the teacher's SymbolTable/Tag (originally a table of
// interpreter variable declarations keyed by name with auto-assigned
// serial IDs); repurposed here to resolve named grammar elements instead
// of variables.
type NameRegistry struct {
	entries map[string]Ref
}

// NewNameRegistry creates an empty registry.
func NewNameRegistry() *NameRegistry {
	return &NameRegistry{entries: make(map[string]Ref)}
}

// Reserve registers name with id/kind. It is an error (reported by the
// caller, not here) to reserve the same name twice with different kinds;
// Reserve itself simply overwrites, matching the teacher's
// DefineTag/InsertTag "overwrites existing" semantics.
func (r *NameRegistry) Reserve(name string, kind Kind, id int32) {
	r.entries[name] = Ref{Kind: kind, ID: id}
}

// Resolve looks up name. The second return is false if name was never
// reserved.
func (r *NameRegistry) Resolve(name string) (Ref, bool) {
	ref, ok := r.entries[name]
	return ref, ok
}

// Size returns the number of registered names.
func (r *NameRegistry) Size() int { return len(r.entries) }

// Each iterates over all registered names and refs.
func (r *NameRegistry) Each(fn func(name string, ref Ref)) {
	for k, v := range r.entries {
		fn(k, v)
	}
}

func (r Ref) String() string {
	return fmt.Sprintf("<%s #%d>", r.Kind, r.ID)
}
