package engine

import (
	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
)

// VisibleSections returns the definition's sections that are currently
// visible given the response's values, ordered by display order. A nil
// response evaluates like an empty one.
func (e *Engine) VisibleSections(def *forms.FormDefinition, resp *forms.FormResponse) []forms.Section {
	values := responseValues(resp)
	shown := shownFields(def, values)
	sections := def.SortedSections()

	out := make([]forms.Section, 0, len(sections))
	for _, sec := range sections {
		if conditions.VisibleScoped(sec.Condition, values, shown) {
			out = append(out, sec)
		}
	}
	return out
}

// VisibleFields returns the section's fields that are currently visible
// given the response's values, in authoring order. The section's own
// visibility is not re-checked here; pair with VisibleSections. The
// definition supplies the other sections' rules, which an emptiness
// predicate needs to know whether its referenced field is shown.
func (e *Engine) VisibleFields(def *forms.FormDefinition, sec forms.Section, resp *forms.FormResponse) []forms.Field {
	values := responseValues(resp)
	shown := shownFields(def, values)

	out := make([]forms.Field, 0, len(sec.Fields))
	for _, f := range sec.Fields {
		if conditions.VisibleScoped(f.Condition, values, shown) {
			out = append(out, f)
		}
	}
	return out
}

// fieldVisible reports whether one field is currently visible: its
// owning section's rule and its own rule must both pass.
func (e *Engine) fieldVisible(def *forms.FormDefinition, sec forms.Section, field forms.Field, values map[string]any) bool {
	shown := shownFields(def, values)
	return conditions.VisibleScoped(sec.Condition, values, shown) &&
		conditions.VisibleScoped(field.Condition, values, shown)
}

// shownFields derives the set of field keys currently visible: the
// owning section's rule and the field's own rule both pass against the
// raw values. The set feeds scoped evaluation, where is_empty and
// is_not_empty read a hidden field as absent. The derivation itself
// runs unscoped, so a chain of emptiness rules each gating the next
// resolves one level per write rather than to a fixed point.
func shownFields(def *forms.FormDefinition, values map[string]any) map[string]bool {
	shown := make(map[string]bool)
	for _, sec := range def.Sections {
		secVisible := conditions.Visible(sec.Condition, values)
		for _, f := range sec.Fields {
			if secVisible && conditions.Visible(f.Condition, values) {
				shown[f.Key] = true
			}
		}
	}
	return shown
}

func responseValues(resp *forms.FormResponse) map[string]any {
	if resp == nil || resp.Values == nil {
		return map[string]any{}
	}
	return resp.Values
}
