package vanilla_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla"
	"github.com/goliatone/go-promptgen/pkg/testsupport"
	theme "github.com/goliatone/go-theme"
)

func TestRenderer_RenderContract(t *testing.T) {
	form := testsupport.MustLoadFormModel(t, filepath.Join("testdata", "form_model.json"))

	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Values: map[string]any{
			"role":     "developer",
			"count":    "3",
			"examples": []string{"GET /items", "POST /items"},
		},
		Errors:       map[string][]string{"count": {render.MessageNotANumber}},
		FormErrors:   []string{"Check the highlighted fields"},
		HiddenFields: map[string]string{"_csrf": "tok"},
		Prompt:       "As a developer",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	goldenPath := filepath.Join("testdata", "form_output.golden.html")
	if testsupport.WriteMaybeGolden(t, goldenPath, output) {
		return
	}

	want := testsupport.MustReadGolden(t, goldenPath)
	if diff := testsupport.CompareGolden(string(want), string(output)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_NameAndContentType(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	if renderer.Name() != "vanilla" {
		t.Fatalf("unexpected name %q", renderer.Name())
	}
	if renderer.ContentType() != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderer_EmptyListRendersOneInput(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{
		TemplateID: "x",
		Fields:     []model.Field{{ID: "examples", Label: "Examples", Type: model.FieldTypeTextArray}},
	}

	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := strings.Count(string(output), `name="examples"`); got != 1 {
		t.Fatalf("expected one list input, got %d:\n%s", got, output)
	}
	if !strings.Contains(string(output), "data-list-add") {
		t.Fatalf("expected add button:\n%s", output)
	}
}

func TestRenderer_EscapesUserContent(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{
		TemplateID:   "x",
		TemplateName: "<b>Name</b>",
		Fields:       []model.Field{{ID: "role", Label: "Role <i>", Type: model.FieldTypeText}},
	}

	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Values:      map[string]any{"role": `"><script>`},
		PromptError: "Error <generating>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	for _, unsafe := range []string{"<b>Name</b>", "Role <i>", `"><script>`, "<generating>"} {
		if strings.Contains(html, unsafe) {
			t.Fatalf("expected %q to be escaped:\n%s", unsafe, html)
		}
	}
	if !strings.Contains(html, `data-state="error"`) {
		t.Fatalf("expected error output region:\n%s", html)
	}
}

func TestRenderer_ThemeCSSVarsAndAssets(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := testsupport.MustLoadFormModel(t, filepath.Join("testdata", "form_model.json"))

	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{
		Theme: &theme.RendererConfig{
			Theme:   "promptgen",
			Variant: "dark",
			CSSVars: map[string]string{"--brand": "#111", "surface": "#222"},
			AssetURL: func(name string) string {
				return "/static/promptgen/" + name
			},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	if !strings.Contains(html, "<style>:root {\n--brand: #111;\n--surface: #222;\n}</style>") {
		t.Fatalf("expected css vars block:\n%s", html)
	}
	if !strings.Contains(html, `<script src="/static/promptgen/promptgen.js" defer></script>`) {
		t.Fatalf("expected theme asset url:\n%s", html)
	}
}

func TestRenderer_DefaultStylesAndStylesheet(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithDefaultStyles(), vanilla.WithStylesheet("/assets/custom.css"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	output, err := renderer.Render(testsupport.Context(), model.FormModel{TemplateID: "x"}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(output)
	if !strings.Contains(html, ".promptgen-form {") {
		t.Fatalf("expected inline stylesheet:\n%s", html)
	}
	if !strings.Contains(html, `<link rel="stylesheet" href="/assets/custom.css">`) {
		t.Fatalf("expected stylesheet link:\n%s", html)
	}
	if strings.Contains(html, "<script") {
		t.Fatalf("expected no scripts without list fields:\n%s", html)
	}
}

func TestRenderer_WithTemplateRenderer(t *testing.T) {
	var names []string
	stub := &stubTemplateRenderer{
		renderTemplateFunc: func(name string, data any, out ...io.Writer) (string, error) {
			names = append(names, name)
			if name == "templates/form.tmpl" {
				return "custom-output", nil
			}
			return "<component />", nil
		},
	}

	renderer, err := vanilla.New(vanilla.WithTemplateRenderer(stub))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	form := testsupport.MustLoadFormModel(t, filepath.Join("testdata", "form_model.json"))
	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(output) != "custom-output" {
		t.Fatalf("unexpected output %q", output)
	}
	want := []string{
		"templates/components/input.tmpl",
		"templates/components/number.tmpl",
		"templates/components/list.tmpl",
		"templates/form.tmpl",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected template order %v", names)
	}
}

func TestRenderer_ThemePartialOverridesForm(t *testing.T) {
	var rendered string
	stub := &stubTemplateRenderer{
		renderTemplateFunc: func(name string, data any, out ...io.Writer) (string, error) {
			rendered = name
			return "", nil
		},
	}
	renderer, err := vanilla.New(vanilla.WithTemplateRenderer(stub))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	_, err = renderer.Render(testsupport.Context(), model.FormModel{TemplateID: "x"}, render.RenderOptions{
		Theme: &theme.RendererConfig{Partials: map[string]string{vanilla.PartialForm: "themes/compact.tmpl"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rendered != "themes/compact.tmpl" {
		t.Fatalf("expected partial override, got %q", rendered)
	}
}

func TestRenderer_WithComponentOverride(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithComponent(model.FieldTypeNumber, "input"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{
		TemplateID: "x",
		Fields:     []model.Field{{ID: "n", Label: "N", Type: model.FieldTypeNumber}},
	}
	output, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(output), `type="number"`) {
		t.Fatalf("expected text input for overridden number field:\n%s", output)
	}
}

func TestRenderer_UnknownComponent(t *testing.T) {
	renderer, err := vanilla.New(vanilla.WithComponent(model.FieldTypeText, "wysiwyg"))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{Fields: []model.Field{{ID: "a", Label: "A", Type: model.FieldTypeText}}}
	if _, err := renderer.Render(testsupport.Context(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected unknown component error")
	}
}

func TestRenderer_PropagatesTemplateErrors(t *testing.T) {
	stub := &stubTemplateRenderer{
		renderTemplateFunc: func(string, any, ...io.Writer) (string, error) {
			return "", errors.New("boom")
		},
	}
	renderer, err := vanilla.New(vanilla.WithTemplateRenderer(stub))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = renderer.Render(testsupport.Context(), model.FormModel{}, render.RenderOptions{})
	if err == nil || !strings.Contains(err.Error(), "vanilla renderer: render template") {
		t.Fatalf("expected wrapped template error, got %v", err)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := renderer.Render(ctx, model.FormModel{}, render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type stubTemplateRenderer struct {
	renderTemplateFunc func(name string, data any, out ...io.Writer) (string, error)
}

func (s *stubTemplateRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return s.RenderTemplate(name, data, out...)
}

func (s *stubTemplateRenderer) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if s.renderTemplateFunc != nil {
		return s.renderTemplateFunc(name, data, out...)
	}
	return "", nil
}

func (s *stubTemplateRenderer) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	return templateContent, nil
}

func (s *stubTemplateRenderer) RegisterFilter(string, func(any, any) (any, error)) error {
	return nil
}

func (s *stubTemplateRenderer) GlobalContext(any) error { return nil }
