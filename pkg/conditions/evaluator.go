package conditions

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Visible evaluates rule against the supplied values and reports whether
// the guarded section or field should be shown. A nil rule or a rule with
// no predicates is always visible. Evaluation is side-effect free: the
// same inputs always produce the same result.
//
// Values hold whatever the client last wrote, keyed by field key. A field
// hidden elsewhere in the form keeps its stored value here; hiding waives
// a field's requirement, not its data.
func Visible(rule *Rule, values map[string]any) bool {
	return VisibleScoped(rule, values, nil)
}

// VisibleScoped evaluates rule like Visible but with knowledge of which
// referenced fields are themselves currently shown. is_empty and
// is_not_empty read a field missing from shown as absent, so hiding a
// field reads as clearing it for emptiness checks, while equals,
// membership and the comparison operators still see the stored value.
// A nil shown set treats every field as shown.
func VisibleScoped(rule *Rule, values map[string]any, shown map[string]bool) bool {
	if rule == nil || len(rule.Predicates) == 0 {
		return true
	}

	if rule.Logic == LogicOr {
		for _, p := range rule.Predicates {
			if evalPredicate(p, values, shown) {
				return true
			}
		}
		return false
	}

	for _, p := range rule.Predicates {
		if !evalPredicate(p, values, shown) {
			return false
		}
	}
	return true
}

func evalPredicate(p Predicate, values map[string]any, shown map[string]bool) bool {
	actual, ok := values[p.Field]
	if !ok {
		actual = nil
	}

	switch p.Operator {
	case OpEquals:
		return scalarEquals(actual, p.Value)
	case OpNotEquals:
		return !scalarEquals(actual, p.Value)
	case OpContains:
		return contains(actual, p.Value)
	case OpNotContains:
		return !contains(actual, p.Value)
	case OpIn:
		return within(actual, p.Value)
	case OpNotIn:
		return !within(actual, p.Value)
	case OpGreaterThan:
		a, okA := toFloat(actual)
		b, okB := toFloat(p.Value)
		return okA && okB && a > b
	case OpLessThan:
		a, okA := toFloat(actual)
		b, okB := toFloat(p.Value)
		return okA && okB && a < b
	case OpIsEmpty:
		if shown != nil && !shown[p.Field] {
			return true
		}
		return IsEmpty(actual)
	case OpIsNotEmpty:
		if shown != nil && !shown[p.Field] {
			return false
		}
		return !IsEmpty(actual)
	default:
		// Operators are checked at publish time; reaching this branch
		// means the definition bypassed CheckDefinition.
		panic("conditions: unknown operator " + string(p.Operator))
	}
}

// IsEmpty reports whether a response value counts as empty: absent (nil),
// the empty string, or a list with no elements. Zero numbers and false
// are values, not emptiness.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// scalarEquals compares two scalars through Canonical. List-typed actual
// values never satisfy equality; membership is what contains/in are for.
func scalarEquals(actual, expected any) bool {
	if isList(actual) {
		return false
	}
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return Canonical(actual) == Canonical(expected)
}

// contains is a substring test for string values and a membership test
// for list values.
func contains(actual, needle any) bool {
	switch t := actual.(type) {
	case string:
		return strings.Contains(t, Canonical(needle))
	case []any:
		want := Canonical(needle)
		for _, item := range t {
			if Canonical(item) == want {
				return true
			}
		}
	case []string:
		want := Canonical(needle)
		for _, item := range t {
			if item == want {
				return true
			}
		}
	}
	return false
}

// within reports whether actual appears in the predicate's value list.
// When actual is itself a list, any shared element matches.
func within(actual, list any) bool {
	candidates := asList(list)
	if len(candidates) == 0 {
		return false
	}
	if isList(actual) {
		for _, item := range asList(actual) {
			for _, c := range candidates {
				if Canonical(item) == Canonical(c) {
					return true
				}
			}
		}
		return false
	}
	if actual == nil {
		return false
	}
	want := Canonical(actual)
	for _, c := range candidates {
		if Canonical(c) == want {
			return true
		}
	}
	return false
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}

func asList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return nil
}

// Canonical normalizes a scalar to its comparison string. Numbers format
// with the minimal digits strconv produces, so a JSON 5 and the string
// "5" compare equal regardless of how the client serialized them.
func Canonical(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	case nil:
		return ""
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// toFloat attempts numeric interpretation of a value. Strings parse with
// strconv; anything non-numeric reports false so comparison predicates
// fail safe instead of erroring.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}
