package components

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/model"
)

const (
	templatePrefix = "templates/components/"

	// ListScript is the asset that wires the add and remove buttons of list
	// fields.
	ListScript = "promptgen.js"
)

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	registry.MustRegister(NameInput, Descriptor{
		Renderer: templateComponentRenderer(PartialInput, templatePrefix+"input.tmpl"),
	})
	registry.MustRegister(NameNumber, Descriptor{
		Renderer: templateComponentRenderer(PartialNumber, templatePrefix+"number.tmpl"),
	})
	registry.MustRegister(NameList, Descriptor{
		Renderer: listRenderer,
		Scripts:  []Script{{Src: ListScript, Defer: true}},
	})

	return registry
}

// ForFieldType maps a field type to the default component name.
func ForFieldType(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeNumber:
		return NameNumber
	case model.FieldTypeTextArray:
		return NameList
	default:
		return NameInput
	}
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, payload(field, data))
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(strings.TrimRight(rendered, "\n"))
		return nil
	}
}

// listRenderer always emits at least one entry so the user has an input to
// type into before pressing "add".
func listRenderer(buf *bytes.Buffer, field model.Field, data ComponentData) error {
	if len(data.Items) == 0 {
		data.Items = []string{""}
	}
	return templateComponentRenderer(PartialList, templatePrefix+"list.tmpl")(buf, field, data)
}

func payload(field model.Field, data ComponentData) map[string]any {
	items := make([]any, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, item)
	}
	errs := make([]any, 0, len(data.Errors))
	for _, message := range data.Errors {
		errs = append(errs, message)
	}
	classes := make(map[string]any, len(data.Classes))
	for key, value := range data.Classes {
		classes[key] = value
	}
	return map[string]any{
		"field": map[string]any{
			"id":    field.ID,
			"label": field.Label,
			"type":  string(field.Type),
		},
		"controlId": data.ControlID,
		"value":     data.Value,
		"items":     items,
		"errors":    errs,
		"classes":   classes,
		"config":    data.Config,
	}
}
