package forms

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var errEmptyDocument = errors.New("forms: definition document is empty")

// ParseDefinition decodes a definition document. Documents are authored
// in YAML; JSON parses through the same decoder since it is a YAML
// subset. The result is normalized (trimmed keys, sanitized labels) but
// NOT validated; run engine.CheckDefinition before publishing.
func ParseDefinition(raw []byte) (*FormDefinition, error) {
	if len(raw) == 0 {
		return nil, errEmptyDocument
	}

	var def FormDefinition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("forms: parse definition: %w", err)
	}

	Normalize(&def)
	return &def, nil
}

// EncodeDefinition serializes a definition back to its YAML document
// form.
func EncodeDefinition(def *FormDefinition) ([]byte, error) {
	if def == nil {
		return nil, errEmptyDocument
	}
	out, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("forms: encode definition: %w", err)
	}
	return out, nil
}

// Normalize trims identifier whitespace and strips markup from
// author-supplied display text. Applied on every parse so persisted
// documents stay clean regardless of where they were authored.
func Normalize(def *FormDefinition) {
	if def == nil {
		return
	}
	def.AgencyID = strings.TrimSpace(def.AgencyID)
	def.Slug = strings.TrimSpace(def.Slug)
	def.Title = SanitizeText(def.Title)
	def.Description = SanitizeText(def.Description)

	for i := range def.Sections {
		sec := &def.Sections[i]
		sec.Title = SanitizeText(sec.Title)
		sec.Description = SanitizeText(sec.Description)
		for j := range sec.Fields {
			f := &sec.Fields[j]
			f.Key = strings.TrimSpace(f.Key)
			f.Label = SanitizeText(f.Label)
			f.Help = SanitizeText(f.Help)
			f.Placeholder = SanitizeText(f.Placeholder)
			if f.Options != nil {
				for k := range f.Options.Static {
					f.Options.Static[k].Label = SanitizeText(f.Options.Static[k].Label)
				}
				f.Options.SetName = strings.TrimSpace(f.Options.SetName)
			}
		}
	}
}
