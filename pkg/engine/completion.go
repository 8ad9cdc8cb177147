package engine

import (
	"math"

	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// CompletionPercent derives the response's completion: the fraction of
// currently-visible required fields holding a value that passes
// validation, as an integer 0..100. With zero visible required fields
// the form counts as complete (100) once anything at all has been
// entered, and untouched (0) before that.
//
// The figure is recomputed from the snapshots on every call. It is
// never cached across mutations because any value change can flip
// visibility and with it the denominator.
func (e *Engine) CompletionPercent(def *forms.FormDefinition, resp *forms.FormResponse) int {
	values := responseValues(resp)

	var required, complete int
	for _, sec := range e.VisibleSections(def, resp) {
		for _, field := range e.VisibleFields(def, sec, resp) {
			if !field.Required {
				continue
			}
			required++

			value := values[field.Key]
			if conditions.IsEmpty(value) {
				continue
			}
			if len(validation.Validate(field, value, true)) == 0 {
				complete++
			}
		}
	}

	if required == 0 {
		if hasAnyValue(values) {
			return 100
		}
		return 0
	}

	return int(math.Round(float64(complete) / float64(required) * 100))
}

func hasAnyValue(values map[string]any) bool {
	for _, v := range values {
		if !conditions.IsEmpty(v) {
			return true
		}
	}
	return false
}
