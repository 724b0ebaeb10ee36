package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/store"
)

// withApp builds the services for a terminal command and closes them when fn
// returns.
func withApp(cmd *cobra.Command, rt *runtime, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt.quiet = true
	a, err := rt.newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
	}()
	return fn(ctx, a)
}

func listCmd(rt *runtime) *cobra.Command {
	var (
		query  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and custom templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				templates, err := a.catalog.Search(ctx, query)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), templates)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tKIND")
				for _, tpl := range templates {
					kind := "built-in"
					if tpl.Custom {
						kind = "custom"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", tpl.ID, tpl.Name, kind)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only list templates whose name contains this text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func fieldsCmd(rt *runtime) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fields <template-id>",
		Short: "Show the form fields of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				form, err := a.orch.Form(ctx, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), form.Fields)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTYPE\tLABEL")
				for _, field := range form.Fields {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", field.ID, field.Type, field.Label)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func composeCmd(rt *runtime) *cobra.Command {
	var (
		input valueFlags
		save  bool
	)
	cmd := &cobra.Command{
		Use:   "compose <template-id>",
		Short: "Render the prompt of a template from values",
		Example: `  promptgen compose default --set role=tester --set task="unit tests"
  promptgen compose code-review --values answers.json
  promptgen compose bug-report --set steps-to-reproduce="Open the app" --set steps-to-reproduce="Click save"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				id := args[0]
				form, err := a.orch.Form(ctx, id)
				if err != nil {
					return err
				}
				values, err := input.values(form, cmd.InOrStdin())
				if err != nil {
					return err
				}
				prompt, err := a.orch.Compose(ctx, id, values)
				if err != nil {
					return err
				}
				if save {
					if err := a.prefs.SaveFormState(ctx, cliClient, id, values); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), prompt)
				return nil
			})
		},
	}
	input.bind(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "remember the values for the next fill")
	return cmd
}

func renderCmd(rt *runtime) *cobra.Command {
	var (
		input    valueFlags
		renderer string
		variant  string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "render <template-id>",
		Short: "Write the HTML form of a template",
		Long: `Render writes the form generated for a template. With values the
prompt preview below the form is filled in too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				id := args[0]
				form, err := a.orch.Form(ctx, id)
				if err != nil {
					return err
				}
				values, err := input.values(form, cmd.InOrStdin())
				if err != nil {
					return err
				}

				html, err := a.orch.Generate(ctx, orchestrator.Request{
					TemplateID:   id,
					Renderer:     renderer,
					Values:       values,
					ThemeVariant: variant,
					Compose:      len(values) > 0,
				})
				if err != nil {
					return fmt.Errorf("failed to generate form: %w", err)
				}

				if output == "" {
					fmt.Fprintln(cmd.OutOrStdout(), string(html))
					return nil
				}
				if err := os.WriteFile(output, html, 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
				return nil
			})
		},
	}
	input.bind(cmd)
	cmd.Flags().StringVar(&renderer, "renderer", "vanilla", "renderer to use")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant: light or dark")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func addCmd(rt *runtime) *cobra.Command {
	var (
		name    string
		content string
		file    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a custom template",
		Long: `Add stores a custom template. The content may be a GitHub Gist link, in
which case the Gist's first file is imported. Custom templates only outlive
the command with a persistent store (--store file --store-dsn path).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				data, err := readInput(file, cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				tpl, err := a.catalog.AddCustom(ctx, name, content)
				if err != nil {
					return err
				}
				a.recorder.IncTemplateChange("add")
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", tpl.ID, tpl.Name)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "template name")
	cmd.Flags().StringVar(&content, "content", "", "template content or Gist link")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the content from a file (- for stdin)")
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

func deleteCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a custom template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				id := args[0]
				if err := a.catalog.DeleteCustom(ctx, id); err != nil {
					return err
				}
				if err := a.prefs.DeleteFormState(ctx, cliClient, id); err != nil && !errors.Is(err, store.ErrNotFound) {
					a.logger.Warn("delete form state", "id", id, "error", err)
				}
				a.recorder.IncTemplateChange("delete")
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				return nil
			})
		},
	}
}

// valueFlags collects field values from --values and --set.
type valueFlags struct {
	set  []string
	file string
}

func (v *valueFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&v.set, "set", nil, "field value as id=value; repeat an id to build a list")
	cmd.Flags().StringVar(&v.file, "values", "", "JSON object of values keyed by field id (- for stdin)")
}

// values reads the JSON document first and lets --set entries replace its
// fields. The result is validated against form and normalised.
func (v *valueFlags) values(form model.FormModel, stdin io.Reader) (map[string]any, error) {
	values := make(map[string]any)
	if v.file != "" {
		data, err := readInput(v.file, stdin)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("decode values %s: %w", v.file, err)
		}
	}

	if len(v.set) > 0 {
		submitted := url.Values{}
		for _, entry := range v.set {
			id, value, ok := strings.Cut(entry, "=")
			if !ok || strings.TrimSpace(id) == "" {
				return nil, fmt.Errorf("invalid --set %q: want id=value", entry)
			}
			id = strings.TrimSpace(id)
			if _, known := form.Field(id); !known {
				return nil, fmt.Errorf("unknown field %q for template %s", id, form.TemplateID)
			}
			submitted.Add(id, value)
		}
		for id, value := range render.DecodeSubmission(form, submitted) {
			values[id] = value
		}
	}

	if errs := render.ValidateValues(form, values); len(errs) > 0 {
		return nil, fieldErrors(errs)
	}
	return render.NormalizeValues(form, values), nil
}

// fieldErrors joins validation messages in field order.
func fieldErrors(errs map[string][]string) error {
	ids := make([]string, 0, len(errs))
	for id := range errs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, strings.Join(errs[id], ", ")))
	}
	return errors.New("invalid values: " + strings.Join(parts, "; "))
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
