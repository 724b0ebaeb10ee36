package promptgen

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-promptgen/pkg/catalog"
	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	"github.com/goliatone/go-promptgen/pkg/prompt"
)

func TestRuntimeAssetsFSContainsListScript(t *testing.T) {
	data, err := fs.ReadFile(RuntimeAssetsFS(), "promptgen.js")
	if err != nil {
		t.Fatalf("expected runtime script to be readable: %v", err)
	}
	if !strings.Contains(string(data), "data-list-remove") {
		t.Fatalf("expected script to handle list removal")
	}
	if _, err := fs.ReadFile(RuntimeAssetsFS(), "promptgen.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
}

func TestBuiltinPromptsListsManifest(t *testing.T) {
	for _, name := range catalog.DefaultManifest {
		if _, err := fs.ReadFile(BuiltinPrompts(), name); err != nil {
			t.Fatalf("expected %s in builtin prompts: %v", name, err)
		}
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}

func TestExtractAndCompose(t *testing.T) {
	content := `As a {{role}} write {{field "number" "Count"}} tests.`
	fields := ExtractFields(content)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %#v", fields)
	}
	got, err := Compose(content, map[string]any{"role": "tester", "count": 4})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got != "As a tester write 4 tests." {
		t.Fatalf("unexpected prompt %q", got)
	}
}

func TestComposeHTMLEscapeOption(t *testing.T) {
	content := `Task: {{task}} / {{field "text" "Audience"}}`
	values := map[string]any{"task": `don't use <div> & "x"`, "audience": "R&D"}

	escaped, err := Compose(content, values)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if escaped != "Task: don&apos;t use &lt;div&gt; &amp; &quot;x&quot; / R&amp;D" {
		t.Fatalf("unexpected escaped prompt %q", escaped)
	}

	plain, err := Compose(content, values, prompt.WithHTMLEscape(false))
	if err != nil {
		t.Fatalf("compose plain: %v", err)
	}
	if plain != `Task: don't use <div> & "x" / R&D` {
		t.Fatalf("unexpected plain prompt %q", plain)
	}
}

func TestGenerateHTMLFromTemplate(t *testing.T) {
	output, err := GenerateHTMLFromTemplate(context.Background(), model.Template{
		ID:      "inline",
		Name:    "Inline",
		Content: "{{topic}}",
	}, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(output), `name="topic"`) {
		t.Fatalf("expected topic input:\n%s", output)
	}
}

func TestNewCatalogUsesDirectoryLoader(t *testing.T) {
	files := fstest.MapFS{
		"only.md": &fstest.MapFile{Data: []byte("---\nname: Only\n---\nHello {{name}}")},
	}
	cat := NewCatalog(
		[]catalog.LoaderOption{catalog.WithFileSystem(files)},
		catalog.WithManifest("only.md"),
		catalog.WithResolver(func(name string) catalog.Source { return catalog.SourceFromFS(name) }),
	)

	html, err := GenerateHTML(context.Background(), "only", "", orchestrator.WithTemplates(cat))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(html), `<h2>Only</h2>`) {
		t.Fatalf("expected template name in output:\n%s", html)
	}
}

func TestNewBuilderHumanizesLabels(t *testing.T) {
	builder := NewBuilder(BuilderOptions{Labeler: HumanizeLabels})
	form, err := builder.Build(model.Template{ID: "x", Content: "{{targetAudience}}"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if form.Fields[0].Label != "Target Audience" {
		t.Fatalf("unexpected label %q", form.Fields[0].Label)
	}
}
