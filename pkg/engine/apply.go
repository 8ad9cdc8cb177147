package engine

import (
	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// ApplyValueChange records one field value on the response and returns
// the updated snapshot along with any validation errors for that value.
// The input response is never mutated.
//
// The value is written even when validation fails so drafts can hold
// invalid intermediate states; users must not lose typed input. Only
// Submit enforces hard gating. Visibility is taken from the response
// snapshot BEFORE the write, matching what the client was looking at
// when it edited the field.
//
// A nil response lazily creates one bound to the definition, modelling
// first-write creation. Writes against a completed response return
// ErrResponseCompleted.
func (e *Engine) ApplyValueChange(def *forms.FormDefinition, resp *forms.FormResponse, fieldKey string, value any) (*forms.FormResponse, []validation.Error, error) {
	field, sec, ok := def.FieldByKey(fieldKey)
	if !ok {
		return resp, nil, &UnknownFieldError{Key: fieldKey}
	}

	if resp == nil {
		resp = forms.NewResponse(def, "", "")
	}
	if resp.Status == forms.StatusCompleted {
		return resp, nil, ErrResponseCompleted
	}

	visible := e.fieldVisible(def, sec, field, responseValues(resp))
	errs := validation.Validate(field, value, visible)
	if visible {
		errs = append(errs, e.validateOptions(field, value)...)
	}

	next := resp.Clone()
	if next.Values == nil {
		next.Values = map[string]any{}
	}
	next.Values[fieldKey] = value

	now := e.now()
	if next.Status == forms.StatusNotStarted {
		next.Status = forms.StatusInProgress
		if next.StartedAt == nil {
			started := now
			next.StartedAt = &started
		}
	}
	activity := now
	next.LastActivityAt = &activity
	next.CompletionPercent = e.CompletionPercent(def, next)

	return next, errs, nil
}

// validateOptions expands the field's options source and checks
// enumerated membership. Resolution failures are swallowed here: an
// unresolvable source is a definition problem reported by
// CheckDefinition, not something to pin on the client's value.
func (e *Engine) validateOptions(field forms.Field, value any) []validation.Error {
	if field.Options == nil || !field.Type.Choice() || e.resolver == nil {
		return nil
	}
	opts, err := e.resolver.Resolve(e.optCtx, *field.Options)
	if err != nil {
		return nil
	}
	return validation.ValidateOptions(field, value, opts)
}
