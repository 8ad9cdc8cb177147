// Package importer bootstraps draft form definitions from existing
// schema documents so agencies don't start from a blank builder. The
// OpenAPI importer maps a JSON request body onto a single-section
// definition: properties become fields, required lists set the required
// flag, enums become static options and constraints become validation
// rules. The result is an UNPUBLISHED draft the author edits and then
// publishes through the engine.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formflow/pkg/conditions"
	"github.com/goliatone/go-formflow/pkg/forms"
)

// ErrOperationNotFound indicates the document holds no operation with
// the requested ID.
var ErrOperationNotFound = errors.New("importer: operation not found")

var errNoRequestSchema = errors.New("importer: operation has no JSON request body schema")

// Request identifies what to import and how to scope the resulting
// draft.
type Request struct {
	AgencyID    string
	Slug        string
	FormType    forms.FormType
	OperationID string
}

// FromOpenAPI loads an OpenAPI document and converts the identified
// operation's request body into a draft definition.
func FromOpenAPI(ctx context.Context, raw []byte, req Request) (*forms.FormDefinition, error) {
	if len(raw) == 0 {
		return nil, errors.New("importer: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("importer: load document: %w", err)
	}

	operation := findOperation(spec, req.OperationID)
	if operation == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, req.OperationID)
	}

	schema := requestSchema(operation)
	if schema == nil {
		return nil, errNoRequestSchema
	}

	formType := req.FormType
	if !formType.Valid() {
		formType = forms.FormTypeCustom
	}

	def := &forms.FormDefinition{
		AgencyID:    req.AgencyID,
		Slug:        req.Slug,
		Version:     1,
		Type:        formType,
		Title:       operation.Summary,
		Description: operation.Description,
		Sections: []forms.Section{{
			Title:        operation.Summary,
			DisplayOrder: 1,
			Required:     true,
			Fields:       fieldsFromSchema(schema),
		}},
	}

	forms.Normalize(def)
	return def, nil
}

func findOperation(spec *openapi3.T, operationID string) *openapi3.Operation {
	if spec.Paths == nil {
		return nil
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	for contentType, mt := range op.RequestBody.Value.Content {
		if !strings.Contains(contentType, "json") || mt.Schema == nil {
			continue
		}
		if mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func fieldsFromSchema(schema *openapi3.Schema) []forms.Field {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	// Map iteration order is random; sort property names so repeated
	// imports produce identical drafts.
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]forms.Field, 0, len(names))
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		fields = append(fields, fieldFromProperty(name, ref.Value, required[name]))
	}
	return fields
}

func fieldFromProperty(name string, prop *openapi3.Schema, required bool) forms.Field {
	field := forms.Field{
		Key:      name,
		Type:     fieldType(prop),
		Label:    labelFromKey(name),
		Help:     prop.Description,
		Required: required,
	}

	if len(prop.Enum) > 0 {
		field.Options = &forms.OptionsSource{
			Kind:   forms.OptionsStatic,
			Static: optionsFromEnum(prop.Enum),
		}
	} else if prop.Items != nil && prop.Items.Value != nil && len(prop.Items.Value.Enum) > 0 {
		field.Options = &forms.OptionsSource{
			Kind:   forms.OptionsStatic,
			Static: optionsFromEnum(prop.Items.Value.Enum),
		}
	}

	field.Validations = validationsFromProperty(field.Type, prop)
	return field
}

func fieldType(prop *openapi3.Schema) forms.FieldType {
	switch firstType(prop.Type) {
	case "integer", "number":
		return forms.FieldTypeNumber
	case "boolean":
		return forms.FieldTypeCheckbox
	case "array":
		return forms.FieldTypeMultiSelect
	case "string":
		if len(prop.Enum) > 0 {
			return forms.FieldTypeSelect
		}
		switch prop.Format {
		case "email":
			return forms.FieldTypeEmail
		case "uri", "url":
			return forms.FieldTypeURL
		case "date":
			return forms.FieldTypeDate
		}
		return forms.FieldTypeText
	}
	return forms.FieldTypeText
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func validationsFromProperty(ft forms.FieldType, prop *openapi3.Schema) []forms.ValidationRule {
	var rules []forms.ValidationRule
	format := func(f float64) string {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	if ft.Numeric() {
		if prop.Min != nil {
			rules = append(rules, forms.MinRule(format(*prop.Min)))
		}
		if prop.Max != nil {
			rules = append(rules, forms.MaxRule(format(*prop.Max)))
		}
	} else {
		if prop.MinLength != 0 {
			rules = append(rules, forms.MinRule(strconv.FormatUint(prop.MinLength, 10)))
		}
		if prop.MaxLength != nil {
			rules = append(rules, forms.MaxRule(strconv.FormatUint(*prop.MaxLength, 10)))
		}
	}
	if prop.Pattern != "" {
		rules = append(rules, forms.PatternRule(prop.Pattern))
	}
	return rules
}

func optionsFromEnum(enum []any) []forms.Option {
	opts := make([]forms.Option, 0, len(enum))
	for _, value := range enum {
		v := conditions.Canonical(value)
		opts = append(opts, forms.Option{Value: v, Label: labelFromKey(v)})
	}
	return opts
}

// labelFromKey turns snake_case/camelCase keys into a readable label.
func labelFromKey(key string) string {
	if key == "" {
		return ""
	}
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = nil
		}
	}
	for _, r := range key {
		switch {
		case r == '_' || r == '-' || r == '.' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current = append(current, r+('a'-'A'))
		default:
			current = append(current, r)
		}
	}
	flush()

	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
