// Package validation checks a single field value against the field's
// declared rules. Checking is visibility-aware: a hidden field is never
// blocking regardless of its content or required flag. All violated
// rules surface together so a UI can show every problem at once.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
)

// Machine-readable error kinds. Kinds are stable contract values;
// display strings may change.
const (
	KindRequired = "required"
	KindMin      = "min"
	KindMax      = "max"
	KindPattern  = "pattern"
	KindFormat   = "format"
	KindType     = "type"
	KindOption   = "option"
)

// Error is one per-field violation. Errors are returned as values in a
// list, never raised; only Submit treats them as gating.
type Error struct {
	FieldKey string `json:"fieldKey"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// Error implements the error interface for logging convenience.
func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldKey, e.Message)
}

// Validate checks value against field's rules. If visible is false the
// result is always nil: hidden fields keep their data but their
// requirements are waived. An empty value only ever yields a required
// error; content rules apply to present values.
func Validate(field forms.Field, value any, visible bool) []Error {
	if !visible {
		return nil
	}

	if conditions.IsEmpty(value) {
		if field.Required {
			return []Error{{
				FieldKey: field.Key,
				Kind:     KindRequired,
				Message:  "this field is required",
			}}
		}
		return nil
	}

	var errs []Error
	errs = append(errs, checkBound(field, value, forms.ValidationRuleMin)...)
	errs = append(errs, checkBound(field, value, forms.ValidationRuleMax)...)
	errs = append(errs, checkPattern(field, value)...)
	errs = append(errs, checkImplicit(field, value)...)
	return errs
}

// ValidateOptions checks a choice field's value against its resolved
// option list. Callers resolve the options source first; the engine
// wires this through its options resolver.
func ValidateOptions(field forms.Field, value any, opts []forms.Option) []Error {
	if !field.Type.Choice() || conditions.IsEmpty(value) {
		return nil
	}

	allowed := make(map[string]struct{}, len(opts))
	for _, o := range opts {
		allowed[o.Value] = struct{}{}
	}

	check := func(v any) []Error {
		if _, ok := allowed[conditions.Canonical(v)]; ok {
			return nil
		}
		return []Error{{
			FieldKey: field.Key,
			Kind:     KindOption,
			Message:  fmt.Sprintf("%q is not one of the allowed options", conditions.Canonical(v)),
		}}
	}

	if field.Type.Multi() {
		var errs []Error
		for _, item := range valueList(value) {
			errs = append(errs, check(item)...)
		}
		return errs
	}
	return check(value)
}

func checkBound(field forms.Field, value any, kind string) []Error {
	rule, ok := findRule(field, kind)
	if !ok {
		return nil
	}
	threshold, err := strconv.ParseFloat(rule.Params["value"], 64)
	if err != nil {
		// Thresholds are checked at publish time.
		panic(fmt.Sprintf("validation: %s rule on %q has non-numeric threshold %q", kind, field.Key, rule.Params["value"]))
	}

	measured, unit, ok := measure(field, value)
	if !ok {
		return []Error{{
			FieldKey: field.Key,
			Kind:     KindType,
			Message:  "value is not numeric",
		}}
	}

	switch kind {
	case forms.ValidationRuleMin:
		if measured < threshold {
			return []Error{{
				FieldKey: field.Key,
				Kind:     KindMin,
				Message:  fmt.Sprintf("must be at least %s %s", rule.Params["value"], unit),
			}}
		}
	case forms.ValidationRuleMax:
		if measured > threshold {
			return []Error{{
				FieldKey: field.Key,
				Kind:     KindMax,
				Message:  fmt.Sprintf("must be at most %s %s", rule.Params["value"], unit),
			}}
		}
	}
	return nil
}

// measure returns the quantity min/max constrain for this field type:
// the numeric value for number fields, the selection count for
// multi-choice fields, and the rune length otherwise.
func measure(field forms.Field, value any) (float64, string, bool) {
	switch {
	case field.Type.Numeric():
		f, ok := numeric(value)
		return f, "", ok
	case field.Type.Multi():
		return float64(len(valueList(value))), "selections", true
	default:
		return float64(utf8.RuneCountInString(conditions.Canonical(value))), "characters", true
	}
}

func checkPattern(field forms.Field, value any) []Error {
	rule, ok := findRule(field, forms.ValidationRulePattern)
	if !ok {
		return nil
	}
	re := compiledPattern(rule.Params["pattern"])
	if re.MatchString(conditions.Canonical(value)) {
		return nil
	}
	return []Error{{
		FieldKey: field.Key,
		Kind:     KindPattern,
		Message:  "value does not match the required pattern",
	}}
}

func checkImplicit(field forms.Field, value any) []Error {
	fail := func(kind, msg string) []Error {
		return []Error{{FieldKey: field.Key, Kind: kind, Message: msg}}
	}

	switch field.Type {
	case forms.FieldTypeEmail:
		addr := conditions.Canonical(value)
		if _, err := mail.ParseAddress(addr); err != nil {
			return fail(KindFormat, "must be a valid email address")
		}
	case forms.FieldTypeURL:
		parsed, err := url.Parse(conditions.Canonical(value))
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fail(KindFormat, "must be an absolute URL")
		}
	case forms.FieldTypeNumber:
		if _, ok := numeric(value); !ok {
			return fail(KindType, "must be a number")
		}
	case forms.FieldTypeDate:
		if _, err := time.Parse("2006-01-02", conditions.Canonical(value)); err != nil {
			return fail(KindFormat, "must be a date in YYYY-MM-DD form")
		}
	}
	return nil
}

func findRule(field forms.Field, kind string) (forms.ValidationRule, bool) {
	for _, rule := range field.Validations {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return forms.ValidationRule{}, false
}

func numeric(value any) (float64, bool) {
	switch t := value.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func valueList(value any) []any {
	switch t := value.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case nil:
		return nil
	}
	return []any{value}
}

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// compiledPattern caches compiled expressions. Patterns are validated at
// publish time, so a compile failure here is an invariant violation and
// panics.
func compiledPattern(expr string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[expr]
	patternMu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(expr)

	patternMu.Lock()
	patternCache[expr] = re
	patternMu.Unlock()
	return re
}
