package engine

import (
	"fmt"
	"regexp"
	"strconv"

	playground "github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
)

// CheckDefinition validates a definition's structure and internal
// consistency. It is the publish-time gate: evaluation assumes a
// definition that passed this check and treats violations found later
// as invariant bugs, not runtime conditions.
//
// Checks, in order: struct-level constraints (required identity fields),
// known form/field types, unique section display orders, unique field
// keys, rule operators and combinators, dangling condition field
// references, numeric rule thresholds, compilable patterns, and options
// sources on choice fields. Every problem is reported, not just the
// first.
func (e *Engine) CheckDefinition(def *forms.FormDefinition) error {
	var issues []SchemaIssue
	add := func(section, fieldKey, format string, args ...any) {
		issues = append(issues, SchemaIssue{
			Section:  section,
			FieldKey: fieldKey,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if err := e.structs.Struct(def); err != nil {
		if invalid, ok := err.(*playground.InvalidValidationError); ok {
			return fmt.Errorf("engine: check definition: %w", invalid)
		}
		for _, ferr := range err.(playground.ValidationErrors) {
			add("", "", "%s fails constraint %q", ferr.Namespace(), ferr.Tag())
		}
	}

	if !def.Type.Valid() {
		add("", "", "unknown form type %q", def.Type)
	}

	keys := map[string]bool{}
	orders := map[int]string{}
	for _, sec := range def.Sections {
		if prev, dup := orders[sec.DisplayOrder]; dup {
			add(sec.Title, "", "display order %d already used by section %q", sec.DisplayOrder, prev)
		}
		orders[sec.DisplayOrder] = sec.Title

		for _, f := range sec.Fields {
			if f.Key == "" {
				add(sec.Title, "", "field is missing a key")
				continue
			}
			if keys[f.Key] {
				add(sec.Title, f.Key, "duplicate field key")
			}
			keys[f.Key] = true

			if !f.Type.Valid() {
				add(sec.Title, f.Key, "unknown field type %q", f.Type)
			}
			issues = append(issues, e.checkRules(sec.Title, f)...)
			issues = append(issues, e.checkOptionsSource(sec.Title, f)...)
		}
	}

	// Condition references resolve against the full key set, so run
	// after collecting every key.
	for _, sec := range def.Sections {
		issues = append(issues, checkRuleRefs(sec.Title, "", sec.Condition, keys)...)
		for _, f := range sec.Fields {
			issues = append(issues, checkRuleRefs(sec.Title, f.Key, f.Condition, keys)...)
		}
	}

	if len(issues) > 0 {
		return &SchemaError{Issues: issues}
	}
	return nil
}

func (e *Engine) checkRules(section string, f forms.Field) []SchemaIssue {
	var issues []SchemaIssue
	for _, rule := range f.Validations {
		switch rule.Kind {
		case forms.ValidationRuleMin, forms.ValidationRuleMax:
			raw := rule.Params["value"]
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				issues = append(issues, SchemaIssue{
					Section:  section,
					FieldKey: f.Key,
					Message:  fmt.Sprintf("%s rule threshold %q is not numeric", rule.Kind, raw),
				})
			}
		case forms.ValidationRulePattern:
			if _, err := regexp.Compile(rule.Params["pattern"]); err != nil {
				issues = append(issues, SchemaIssue{
					Section:  section,
					FieldKey: f.Key,
					Message:  fmt.Sprintf("pattern does not compile: %v", err),
				})
			}
		default:
			issues = append(issues, SchemaIssue{
				Section:  section,
				FieldKey: f.Key,
				Message:  fmt.Sprintf("unknown validation rule kind %q", rule.Kind),
			})
		}
	}
	return issues
}

func (e *Engine) checkOptionsSource(section string, f forms.Field) []SchemaIssue {
	if f.Type.Choice() {
		if f.Options == nil {
			return []SchemaIssue{{
				Section:  section,
				FieldKey: f.Key,
				Message:  "choice field has no options source",
			}}
		}
		if _, err := e.resolver.Resolve(e.optCtx, *f.Options); err != nil {
			return []SchemaIssue{{
				Section:  section,
				FieldKey: f.Key,
				Message:  fmt.Sprintf("options source does not resolve: %v", err),
			}}
		}
		return nil
	}

	if f.Options != nil {
		return []SchemaIssue{{
			Section:  section,
			FieldKey: f.Key,
			Message:  fmt.Sprintf("field type %q does not take options", f.Type),
		}}
	}
	return nil
}

func checkRuleRefs(section, fieldKey string, rule *conditions.Rule, keys map[string]bool) []SchemaIssue {
	if rule == nil {
		return nil
	}
	var issues []SchemaIssue
	if !rule.Logic.Valid() {
		issues = append(issues, SchemaIssue{
			Section:  section,
			FieldKey: fieldKey,
			Message:  fmt.Sprintf("unknown rule logic %q", rule.Logic),
		})
	}
	for _, p := range rule.Predicates {
		if !p.Operator.Valid() {
			issues = append(issues, SchemaIssue{
				Section:  section,
				FieldKey: fieldKey,
				Message:  fmt.Sprintf("unknown operator %q", p.Operator),
			})
		}
		if !keys[p.Field] {
			issues = append(issues, SchemaIssue{
				Section:  section,
				FieldKey: fieldKey,
				Message:  fmt.Sprintf("condition references unknown field %q", p.Field),
			})
		}
	}
	return issues
}
