package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formflow/pkg/forms"
)

// errInterrupted reports the user cancelled the prompt (Ctrl+C).
var errInterrupted = errors.New("prompt interrupted")

// prompter asks for one field value using the prompt kind that matches
// the field type. Extracted behind a tiny interface so the fill loop is
// testable without a terminal.
type prompter interface {
	Ask(field forms.Field, opts []forms.Option) (any, error)
}

type surveyPrompter struct{}

func (surveyPrompter) Ask(field forms.Field, opts []forms.Option) (any, error) {
	message := field.Label
	if message == "" {
		message = field.Key
	}
	if field.Required {
		message += " *"
	}

	var (
		value any
		err   error
	)
	switch {
	case field.Type == forms.FieldTypeSelect || field.Type == forms.FieldTypeRadio:
		var picked string
		err = survey.AskOne(&survey.Select{
			Message: message,
			Options: optionValues(opts),
			Help:    field.Help,
		}, &picked)
		value = picked

	case field.Type.Multi():
		var picked []string
		err = survey.AskOne(&survey.MultiSelect{
			Message: message,
			Options: optionValues(opts),
			Help:    field.Help,
		}, &picked)
		value = asAnyList(picked)

	case field.Type == forms.FieldTypeTextarea:
		var text string
		err = survey.AskOne(&survey.Multiline{
			Message: message,
			Help:    field.Help,
		}, &text)
		value = text

	default:
		var text string
		err = survey.AskOne(&survey.Input{
			Message: message,
			Help:    field.Help,
			Default: field.Placeholder,
		}, &text)
		value = text
	}

	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return nil, errInterrupted
		}
		return nil, fmt.Errorf("prompt %q: %w", field.Key, err)
	}
	return value, nil
}

func optionValues(opts []forms.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}

func asAnyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
