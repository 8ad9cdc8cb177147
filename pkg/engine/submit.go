package engine

import (
	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/validation"
)

// Submit attempts to finalize the response. Visibility and validation
// are recomputed from scratch off the snapshots; nothing incrementally
// maintained is trusted, so stale cached state can never let an invalid
// response through.
//
// If any currently-visible required field fails validation the errors
// come back and the response is returned unchanged. Otherwise the
// returned snapshot is completed with CompletedAt stamped. Submitting
// an already-completed response is a no-op returning the same result,
// making Submit idempotent.
func (e *Engine) Submit(def *forms.FormDefinition, resp *forms.FormResponse) (*forms.FormResponse, []validation.Error, error) {
	if resp == nil {
		return nil, nil, ErrNilResponse
	}

	values := responseValues(resp)

	var errs []validation.Error
	for _, sec := range e.VisibleSections(def, resp) {
		for _, field := range e.VisibleFields(def, sec, resp) {
			value := values[field.Key]
			fieldErrs := validation.Validate(field, value, true)
			fieldErrs = append(fieldErrs, e.validateOptions(field, value)...)
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return resp, errs, nil
	}

	if resp.Status == forms.StatusCompleted {
		return resp.Clone(), nil, nil
	}

	next := resp.Clone()
	next.Status = forms.StatusCompleted
	now := e.now()
	next.CompletedAt = &now
	next.LastActivityAt = &now
	next.CompletionPercent = e.CompletionPercent(def, next)
	return next, nil, nil
}
