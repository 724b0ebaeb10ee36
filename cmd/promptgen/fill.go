package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/renderers/tui"
)

const formatPrompt = "prompt"

// fillCmd asks for every field in the terminal.
func fillCmd(rt *runtime) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "fill [template-id]",
		Short: "Fill in a template interactively and print the prompt",
		Long: `Fill asks for each field of a template and prints the finished prompt.
Without a template id it offers the template list, starting at the one
used last. Answers are remembered and offered as defaults next time.

--format json, form or pretty prints the answers instead of the prompt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatPrompt {
				if _, ok := tui.ParseOutputFormat(format); !ok {
					return fmt.Errorf("unknown format %q", format)
				}
			}
			prompts := rt.prompts
			if prompts == nil {
				prompts = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}

			return withApp(cmd, rt, func(ctx context.Context, a *app) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}
				id, err := chooseTemplate(ctx, a, prompts, id)
				if err != nil {
					return err
				}
				return fillTemplate(ctx, cmd, a, prompts, id, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatPrompt, "output: prompt, json, form or pretty")
	return cmd
}

// chooseTemplate returns id when set, otherwise asks for one, and remembers
// the choice.
func chooseTemplate(ctx context.Context, a *app, prompts tui.PromptDriver, id string) (string, error) {
	if id == "" {
		templates, err := a.catalog.List(ctx)
		if err != nil {
			return "", err
		}
		last, err := a.prefs.SelectedTemplateID(ctx, cliClient)
		if err != nil {
			return "", err
		}

		names := make([]string, len(templates))
		descriptions := make([]string, len(templates))
		defaultIndex := 0
		for i, tpl := range templates {
			names[i] = tpl.Name
			descriptions[i] = tpl.ID
			if tpl.ID == last {
				defaultIndex = i
			}
		}
		index, err := prompts.Select(ctx, tui.SelectConfig{
			Message:      "Template",
			Options:      names,
			Descriptions: descriptions,
			DefaultIndex: defaultIndex,
			PageSize:     10,
		})
		if err != nil {
			return "", err
		}
		if index < 0 || index >= len(templates) {
			return "", fmt.Errorf("template choice %d out of range", index)
		}
		id = templates[index].ID
	} else if _, err := a.catalog.Find(ctx, id); err != nil {
		return "", err
	}

	if err := a.prefs.SetSelectedTemplateID(ctx, cliClient, id); err != nil {
		return "", err
	}
	return id, nil
}

func fillTemplate(ctx context.Context, cmd *cobra.Command, a *app, prompts tui.PromptDriver, id, format string) error {
	form, err := a.orch.Form(ctx, id)
	if err != nil {
		return err
	}
	prefill, err := a.prefs.FormState(ctx, cliClient, id)
	if err != nil {
		return err
	}

	outputFormat := tui.OutputFormatJSON
	if format != formatPrompt {
		outputFormat = tui.OutputFormat(format)
	}
	var collected map[string]any
	renderer, err := tui.New(
		tui.WithPromptDriver(prompts),
		tui.WithOutputFormat(outputFormat),
		tui.WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			collected = values
			return values, nil
		}),
	)
	if err != nil {
		return err
	}

	payload, err := renderer.Render(ctx, form, render.RenderOptions{Values: prefill})
	if err != nil {
		return err
	}
	values := render.NormalizeValues(form, collected)
	if err := a.prefs.SaveFormState(ctx, cliClient, id, values); err != nil {
		return err
	}

	if format != formatPrompt {
		fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return nil
	}
	prompt, err := a.orch.Compose(ctx, id, values)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), prompt)
	return nil
}
