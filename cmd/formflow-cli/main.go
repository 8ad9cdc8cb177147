// formflow-cli fills a form definition interactively from the terminal,
// exercising the same engine the product uses: conditional sections
// appear and disappear as answers change, values autosave into the
// response snapshot, and submit gates on visible-required validity.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/forms"
	"github.com/goliatone/go-formflow/pkg/options"
	"github.com/goliatone/go-formflow/pkg/storage/sqlite"
	"github.com/goliatone/go-formflow/pkg/validation"
)

func main() {
	definitionPath := flag.String("definition", "form.yaml", "form definition document to fill")
	dbPath := flag.String("db", "", "sqlite database to persist the response (skipped if empty)")
	entityType := flag.String("entity-type", "consultation", "entity type the response attaches to")
	entityID := flag.String("entity-id", "", "entity ID the response attaches to")
	flag.Parse()

	log := logrus.New()

	if err := run(context.Background(), log, *definitionPath, *dbPath, *entityType, *entityID); err != nil {
		if errors.Is(err, errInterrupted) {
			os.Exit(130)
		}
		log.Fatal(err)
	}
}

func run(ctx context.Context, log *logrus.Logger, definitionPath, dbPath, entityType, entityID string) error {
	raw, err := os.ReadFile(definitionPath)
	if err != nil {
		return fmt.Errorf("read definition: %w", err)
	}

	def, err := forms.ParseDefinition(raw)
	if err != nil {
		return err
	}

	registry := options.NewRegistry()
	eng := engine.New(engine.WithOptionsResolver(registry))

	if err := eng.CheckDefinition(def); err != nil {
		return fmt.Errorf("definition is not valid: %w", err)
	}

	resp := forms.NewResponse(def, entityType, entityID)
	resp, err = fill(eng, registry, def, resp, surveyPrompter{})
	if err != nil {
		return err
	}

	resp, errs, err := eng.Submit(def, resp)
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		printErrors(errs)
		fmt.Printf("\nnot submitted; %d%% complete\n", resp.CompletionPercent)
		return nil
	}

	fmt.Printf("\nsubmitted at %s (%d%% complete)\n", resp.CompletedAt.Format("15:04:05"), resp.CompletionPercent)

	if dbPath != "" {
		store, err := sqlite.Open(dbPath, sqlite.WithLogger(log))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveDefinition(ctx, def); err != nil {
			return err
		}
		resp.DefinitionID = def.ID
		if _, err := store.SaveResponse(ctx, resp, resp.Revision); err != nil {
			return err
		}
		log.WithField("response", resp.ID).Info("response saved")
	}

	out, err := json.MarshalIndent(resp.Values, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// fill walks the currently visible sections in order, prompting for each
// visible field. Visibility is re-derived after every write, so answers
// in one section can reveal or hide later sections mid-run.
func fill(eng *engine.Engine, registry *options.Registry, def *forms.FormDefinition, resp *forms.FormResponse, ask prompter) (*forms.FormResponse, error) {
	asked := map[string]bool{}

	for {
		field, section, done := nextField(eng, def, resp, asked)
		if done {
			return resp, nil
		}
		asked[field.Key] = true

		if section.Title != "" && !asked["_section:"+section.Title] {
			asked["_section:"+section.Title] = true
			fmt.Printf("\n== %s ==\n", section.Title)
		}

		var opts []forms.Option
		if field.Options != nil {
			resolved, err := registry.Resolve(context.Background(), *field.Options)
			if err != nil {
				return nil, err
			}
			opts = resolved
		}

		value, err := ask.Ask(field, opts)
		if err != nil {
			return nil, err
		}

		next, errs, err := eng.ApplyValueChange(def, resp, field.Key, value)
		if err != nil {
			return nil, err
		}
		resp = next
		if len(errs) > 0 {
			printErrors(errs)
			// Invalid input stays in the draft; re-ask so the run can
			// still end in a submittable state.
			asked[field.Key] = false
		}
	}
}

// nextField returns the first visible, not-yet-asked field in display
// order.
func nextField(eng *engine.Engine, def *forms.FormDefinition, resp *forms.FormResponse, asked map[string]bool) (forms.Field, forms.Section, bool) {
	for _, sec := range eng.VisibleSections(def, resp) {
		for _, field := range eng.VisibleFields(def, sec, resp) {
			if !asked[field.Key] {
				return field, sec, false
			}
		}
	}
	return forms.Field{}, forms.Section{}, true
}

func printErrors(errs []validation.Error) {
	for _, e := range errs {
		fmt.Printf("  ! %s: %s\n", e.FieldKey, e.Message)
	}
}
