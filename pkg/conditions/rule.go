// Package conditions evaluates visibility rules against the current set of
// response values. Rules are flat predicate lists combined by a single
// AND/OR; evaluation is pure and never errors, so callers can run it on
// every keystroke without defensive plumbing.
package conditions

// Operator identifies one comparison a predicate can perform.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

// Valid reports whether op is one of the supported operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpIn, OpNotIn, OpGreaterThan, OpLessThan,
		OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// Logic selects how a rule combines its predicates.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Valid reports whether l is a supported combinator. The empty string is
// accepted and treated as AND by Visible.
func (l Logic) Valid() bool {
	return l == "" || l == LogicAnd || l == LogicOr
}

// Predicate is one atomic check against a single response value.
type Predicate struct {
	Field    string   `json:"field"              yaml:"field"    validate:"required"`
	Operator Operator `json:"operator"           yaml:"operator" validate:"required"`
	Value    any      `json:"value,omitempty"    yaml:"value,omitempty"`
}

// Rule is a flat list of predicates joined by one combinator. Nested
// boolean trees are intentionally unsupported; a nil Rule means
// always-visible.
type Rule struct {
	Logic      Logic       `json:"logic,omitempty" yaml:"logic,omitempty"`
	Predicates []Predicate `json:"predicates"      yaml:"predicates" validate:"dive"`
}

// Clone returns a deep copy of the rule. A nil receiver clones to nil.
func (r *Rule) Clone() *Rule {
	if r == nil {
		return nil
	}
	out := &Rule{Logic: r.Logic}
	if len(r.Predicates) > 0 {
		out.Predicates = make([]Predicate, len(r.Predicates))
		copy(out.Predicates, r.Predicates)
	}
	return out
}

// FieldRefs returns the set of field keys the rule reads, in predicate
// order. Used by publish-time checks to reject dangling references.
func (r *Rule) FieldRefs() []string {
	if r == nil || len(r.Predicates) == 0 {
		return nil
	}
	refs := make([]string, 0, len(r.Predicates))
	for _, p := range r.Predicates {
		refs = append(refs, p.Field)
	}
	return refs
}
