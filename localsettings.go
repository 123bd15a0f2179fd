package scanless

// UseMode controls how a LocalSettings field propagates to descendants
// (spec §3).
type UseMode int8

const (
	// InheritForSelfAndChildren means this field is not set locally; the
	// value from the nearest ancestor that does set it applies to both
	// this element and its children.
	InheritForSelfAndChildren UseMode = iota
	// LocalForSelf applies the local value to this element only; children
	// continue to inherit from further up.
	LocalForSelf
	// LocalForSelfAndChildren applies the local value to this element and
	// becomes the new inherited value for its children.
	LocalForSelfAndChildren
	// LocalForChildren applies the local value to children only; this
	// element itself continues to use the inherited value.
	LocalForChildren
)

// LocalSettings is the per-rule settings block of spec §3. Each field has
// an independent UseMode so a grammar can, e.g., set a skip rule for an
// entire subtree while only changing error handling for one node.
type LocalSettings struct {
	SkipRuleID           int32 // -1 if none
	SkipUseMode          UseMode
	SkippingStrategyID   int32
	SkippingUseMode      UseMode
	ErrorHandlingMode    ErrorHandling
	ErrorHandlingUseMode UseMode
	IgnoreBarriers       bool
	IgnoreBarriersUseMode UseMode
}

// DefaultLocalSettings returns a settings block whose every field
// inherits (spec §3: "is_default ⇔ all use_modes are Inherit").
func DefaultLocalSettings() LocalSettings {
	return LocalSettings{SkipRuleID: -1}
}

// IsDefault reports whether every field of s uses InheritForSelfAndChildren.
func (s LocalSettings) IsDefault() bool {
	return s.SkipUseMode == InheritForSelfAndChildren &&
		s.SkippingUseMode == InheritForSelfAndChildren &&
		s.ErrorHandlingUseMode == InheritForSelfAndChildren &&
		s.IgnoreBarriersUseMode == InheritForSelfAndChildren
}

// effective is the resolved settings snapshot actually used for one rule
// invocation: the merge of an ancestor's inherited settings with this
// rule's local overrides (spec §4.3 state machine step "resolve_settings").
type effective struct {
	SkipRuleID         int32
	SkippingStrategyID int32
	ErrorHandlingMode  ErrorHandling
	IgnoreBarriers     bool
}

// resolveForSelf computes the settings this element itself should parse
// with, given the settings inherited from its parent.
func resolveForSelf(local LocalSettings, inherited effective) effective {
	out := inherited
	if local.SkipUseMode == LocalForSelf || local.SkipUseMode == LocalForSelfAndChildren {
		out.SkipRuleID = local.SkipRuleID
	}
	if local.SkippingUseMode == LocalForSelf || local.SkippingUseMode == LocalForSelfAndChildren {
		out.SkippingStrategyID = local.SkippingStrategyID
	}
	if local.ErrorHandlingUseMode == LocalForSelf || local.ErrorHandlingUseMode == LocalForSelfAndChildren {
		out.ErrorHandlingMode = local.ErrorHandlingMode
	}
	if local.IgnoreBarriersUseMode == LocalForSelf || local.IgnoreBarriersUseMode == LocalForSelfAndChildren {
		out.IgnoreBarriers = local.IgnoreBarriers
	}
	return out
}

// resolveForChildren computes the settings this element's children should
// inherit.
func resolveForChildren(local LocalSettings, inherited effective) effective {
	out := inherited
	if local.SkipUseMode == LocalForChildren || local.SkipUseMode == LocalForSelfAndChildren {
		out.SkipRuleID = local.SkipRuleID
	}
	if local.SkippingUseMode == LocalForChildren || local.SkippingUseMode == LocalForSelfAndChildren {
		out.SkippingStrategyID = local.SkippingStrategyID
	}
	if local.ErrorHandlingUseMode == LocalForChildren || local.ErrorHandlingUseMode == LocalForSelfAndChildren {
		out.ErrorHandlingMode = local.ErrorHandlingMode
	}
	if local.IgnoreBarriersUseMode == LocalForChildren || local.IgnoreBarriersUseMode == LocalForSelfAndChildren {
		out.IgnoreBarriers = local.IgnoreBarriers
	}
	return out
}
