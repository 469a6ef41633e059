package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/traitenum/traitenum/internal/cli/ui"
	"github.com/traitenum/traitenum/internal/compiler/metadata"
	"github.com/traitenum/traitenum/internal/model"
	"github.com/traitenum/traitenum/internal/store"
)

// Formats accepted by inspect --format
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatDump = "dump"
)

// modelView is the printable form of a schema model
type modelView struct {
	Identifier string      `json:"identifier" yaml:"identifier"`
	Size       int         `json:"size" yaml:"size"`
	Fields     []fieldView `json:"fields" yaml:"fields"`
	Types      []typeView  `json:"types,omitempty" yaml:"types,omitempty"`
}

type fieldView struct {
	Name       string   `json:"name" yaml:"name"`
	Return     string   `json:"return" yaml:"return"`
	Definition string   `json:"definition" yaml:"definition"`
	Settings   []string `json:"settings,omitempty" yaml:"settings,omitempty"`
}

type typeView struct {
	Name     string `json:"name" yaml:"name"`
	Relation string `json:"relation" yaml:"relation"`
	Target   string `json:"target" yaml:"target"`
	Nature   string `json:"nature" yaml:"nature"`
}

// selectModel prompts for one of options and returns the chosen one
var selectModel = func(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

func newInspectCommand(opts *options) *cobra.Command {
	var (
		format      string
		modelPath   string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [identifier]",
		Short: "Show stored schema models",
		Long: `Without an identifier, list every model in the configured store.
With one, show the fields and associated types of that model.

With --interactive, pick the model from a list instead: all stored models
when no identifier is given, the close matches when it is not found.`,
		Example: `  # List stored models
  traitenum inspect

  # Show a model
  traitenum inspect family::ParentTrait

  # Pick a stored model
  traitenum inspect --interactive

  # Show a model artifact as YAML
  traitenum inspect --model ParentTrait.tem --format yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case FormatText, FormatJSON, FormatYAML, FormatDump:
			default:
				return fmt.Errorf("unknown format %q, want one of text, json, yaml, dump", format)
			}

			if modelPath != "" {
				data, err := os.ReadFile(modelPath)
				if err != nil {
					return fmt.Errorf("failed to read model: %w", err)
				}
				return writeModel(cmd.OutOrStdout(), data, format, opts.noColor)
			}

			p, err := opts.openProject(cmd, nil, false)
			if err != nil {
				return err
			}
			defer p.Close()

			if len(args) == 0 && !interactive {
				return listModels(cmd, p.models, format, opts.noColor)
			}

			ids, err := p.models.List(cmd.Context())
			if err != nil {
				return err
			}

			var name string
			if len(args) == 0 {
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No models stored. Run 'traitenum build' first.")
					return nil
				}
				names := make([]string, len(ids))
				for i, id := range ids {
					names[i] = id.String()
				}
				if name, err = selectModel("Select a model:", names); err != nil {
					return err
				}
			} else {
				name = args[0]
			}

			id, err := model.ParseIdentifier(name)
			if err != nil {
				return err
			}
			data, err := p.models.Get(cmd.Context(), id)
			if store.IsNotFound(err) {
				suggestions := ui.SuggestIdentifiers(id.String(), ids, nil)
				if !interactive || len(suggestions) == 0 {
					fmt.Fprint(cmd.ErrOrStderr(), ui.ModelNotFoundError(id.String(), suggestions, opts.noColor))
					return err
				}
				choice, selectErr := selectModel(fmt.Sprintf("%s not found. Did you mean:", id), suggestions)
				if selectErr != nil {
					return selectErr
				}
				if id, err = model.ParseIdentifier(choice); err != nil {
					return err
				}
				data, err = p.models.Get(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return writeModel(cmd.OutOrStdout(), data, format, opts.noColor)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", FormatText, "Output format: text, json, yaml or dump")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Inspect a model artifact instead of the store")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the model from a list")

	return cmd
}

func listModels(cmd *cobra.Command, models store.Store, format string, noColor bool) error {
	ids, err := models.List(cmd.Context())
	if err != nil {
		return err
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}

	out := cmd.OutOrStdout()
	switch format {
	case FormatJSON:
		return writeJSON(out, names)
	case FormatYAML:
		return writeYAML(out, names)
	case FormatDump:
		spew.Fdump(out, ids)
		return nil
	}

	if len(ids) == 0 {
		fmt.Fprintln(out, "No models stored. Run 'traitenum build' first.")
		return nil
	}
	table := ui.NewTable(out, []ui.Column{
		{Title: "IDENTIFIER", Style: ui.StyleIdentifier},
		{Title: "QUALIFIER", Style: ui.StyleMuted},
	}, noColor)
	for _, id := range ids {
		table.AddIdentifier(id, id.Qualifier())
	}
	table.Render()
	return nil
}

func writeModel(w io.Writer, data []byte, format string, noColor bool) error {
	schema, err := metadata.Deserialize(data)
	if err != nil {
		return err
	}

	if format == FormatDump {
		spew.Fdump(w, schema)
		return nil
	}

	view := newModelView(schema, len(data))
	switch format {
	case FormatJSON:
		return writeJSON(w, view)
	case FormatYAML:
		return writeYAML(w, view)
	}

	ui.Header(w, view.Identifier, noColor)
	summary := ui.NewSummary(w, noColor)
	summary.Add("Fields", len(view.Fields))
	summary.Add("Types", len(view.Types))
	summary.Add("Model size", fmt.Sprintf("%d bytes", view.Size))
	summary.Render()

	fmt.Fprintln(w)
	fields := ui.NewTable(w, ui.Columns("FIELD", "RETURN", "DEFINITION", "SETTINGS"), noColor)
	for _, f := range view.Fields {
		fields.AddRow(f.Name, f.Return, f.Definition, strings.Join(f.Settings, " "))
	}
	fields.Render()

	if len(view.Types) > 0 {
		fmt.Fprintln(w)
		types := ui.NewTable(w, []ui.Column{
			{Title: "TYPE"},
			{Title: "RELATION"},
			{Title: "TARGET", Style: ui.StyleIdentifier},
			{Title: "NATURE", Style: ui.StyleMuted},
		}, noColor)
		for _, t := range view.Types {
			types.AddRow(t.Name, t.Relation, t.Target, t.Nature)
		}
		types.Render()
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

func newModelView(schema *model.Schema, size int) modelView {
	view := modelView{
		Identifier: schema.Identifier.String(),
		Size:       size,
		Fields:     make([]fieldView, 0, len(schema.Methods)),
	}
	for _, m := range schema.Methods {
		view.Fields = append(view.Fields, fieldView{
			Name:       m.Name,
			Return:     m.Return.String(),
			Definition: m.Definition.Kind.String(),
			Settings:   settings(m.Definition),
		})
	}
	for _, t := range schema.Types {
		view.Types = append(view.Types, typeView{
			Name:     t.Name,
			Relation: t.RelationName,
			Target:   t.Target.String(),
			Nature:   t.Nature.String(),
		})
	}
	return view
}

// settings renders the annotation settings a definition was declared with
func settings(def model.AttributeDefinition) []string {
	var out []string
	add := func(name string, value fmt.Stringer) {
		out = append(out, fmt.Sprintf("%s(%s)", name, value))
	}

	switch {
	case def.Bool != nil:
		if def.Bool.Default != nil {
			add("default", model.BoolValue(*def.Bool.Default))
		}
	case def.Str != nil:
		if def.Str.Default != nil {
			add("default", model.StrValue(*def.Str.Default))
		}
		if def.Str.Preset != nil {
			add("preset", *def.Str.Preset)
		}
	case def.Num != nil:
		if def.Num.Default != nil {
			add("default", *def.Num.Default)
		}
		if def.Num.Preset != nil {
			add("preset", *def.Num.Preset)
		}
		if def.Num.Start != nil {
			add("start", *def.Num.Start)
		}
		if def.Num.Increment != nil {
			add("increment", *def.Num.Increment)
		}
	case def.Enum != nil:
		if def.Enum.Default != nil {
			add("default", *def.Enum.Default)
		}
	case def.Rel != nil:
		if def.Rel.Nature != nil {
			add("nature", *def.Rel.Nature)
		}
		if def.Rel.Dispatch != nil {
			add("dispatch", *def.Rel.Dispatch)
		}
	case def.Type != nil:
		if def.Type.Default != nil {
			add("default", *def.Type.Default)
		}
	}
	return out
}
