package components

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/goliatone/go-promptgen/pkg/model"
)

func TestRegistryDescriptorClone(t *testing.T) {
	reg := New()
	renderer := func(buf *bytes.Buffer, field model.Field, data ComponentData) error { return nil }

	if err := reg.Register("test", Descriptor{Renderer: renderer, Stylesheets: []string{"/a.css"}}); err != nil {
		t.Fatalf("register: %v", err)
	}

	desc, ok := reg.Descriptor("test")
	if !ok {
		t.Fatalf("descriptor not found")
	}

	desc.Stylesheets = append(desc.Stylesheets, "/mutated.css")

	original, _ := reg.Descriptor("test")
	if len(original.Stylesheets) != 1 || original.Stylesheets[0] != "/a.css" {
		t.Fatalf("registry descriptor mutated: %#v", original.Stylesheets)
	}
}

func TestRegistryRegisterValidates(t *testing.T) {
	reg := New()
	if err := reg.Register("  ", Descriptor{Renderer: func(*bytes.Buffer, model.Field, ComponentData) error { return nil }}); err == nil {
		t.Fatalf("expected blank name to fail")
	}
	if err := reg.Register("input", Descriptor{}); err == nil {
		t.Fatalf("expected nil renderer to fail")
	}
}

func TestRegistryAssetsDeduplicates(t *testing.T) {
	reg := New()
	renderer := func(buf *bytes.Buffer, field model.Field, data ComponentData) error { return nil }

	reg.MustRegister("input", Descriptor{
		Renderer:    renderer,
		Stylesheets: []string{"/shared.css", "/input.css"},
		Scripts: []Script{
			{Src: "/shared.js"},
		},
	})
	reg.MustRegister("list", Descriptor{
		Renderer:    renderer,
		Stylesheets: []string{"/shared.css", "/list.css"},
		Scripts: []Script{
			{Src: "/shared.js"},
			{Src: "/list.js"},
		},
	})

	styles, scripts := reg.Assets([]string{"input", "list", "missing"})
	if got := strings.Join(styles, ","); got != "/shared.css,/input.css,/list.css" {
		t.Fatalf("unexpected stylesheets %q", got)
	}
	if len(scripts) != 2 || scripts[0].Src != "/shared.js" || scripts[1].Src != "/list.js" {
		t.Fatalf("unexpected scripts %#v", scripts)
	}
}

func TestDefaultRegistry(t *testing.T) {
	reg := NewDefaultRegistry()
	if got := strings.Join(reg.Names(), ","); got != "input,list,number" {
		t.Fatalf("unexpected names %q", got)
	}

	cases := map[model.FieldType]string{
		model.FieldTypeText:      NameInput,
		model.FieldTypeNumber:    NameNumber,
		model.FieldTypeTextArray: NameList,
		"unknown":                NameInput,
	}
	for fieldType, want := range cases {
		if got := ForFieldType(fieldType); got != want {
			t.Fatalf("ForFieldType(%q) = %q, want %q", fieldType, got, want)
		}
	}
}

func TestListRendererSeedsEmptyItem(t *testing.T) {
	stub := &recordingRenderer{}
	desc, _ := NewDefaultRegistry().Descriptor(NameList)

	var buf bytes.Buffer
	field := model.Field{ID: "examples", Label: "Examples", Type: model.FieldTypeTextArray}
	if err := desc.Renderer(&buf, field, ComponentData{Template: stub}); err != nil {
		t.Fatalf("render: %v", err)
	}

	if stub.name != templatePrefix+"list.tmpl" {
		t.Fatalf("unexpected template %q", stub.name)
	}
	items, _ := stub.data["items"].([]any)
	if len(items) != 1 || items[0] != "" {
		t.Fatalf("expected a single empty item, got %#v", stub.data["items"])
	}
	if buf.String() != "<rendered>" {
		t.Fatalf("expected trailing newline trimmed, got %q", buf.String())
	}
}

func TestTemplateRendererHonoursPartials(t *testing.T) {
	stub := &recordingRenderer{}
	desc, _ := NewDefaultRegistry().Descriptor(NameInput)

	var buf bytes.Buffer
	err := desc.Renderer(&buf, model.Field{ID: "role", Label: "Role"}, ComponentData{
		Template: stub,
		Partials: map[string]string{PartialInput: "themes/input.tmpl"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if stub.name != "themes/input.tmpl" {
		t.Fatalf("expected partial override, got %q", stub.name)
	}
}

func TestTemplateRendererRequiresEngine(t *testing.T) {
	desc, _ := NewDefaultRegistry().Descriptor(NameNumber)
	if err := desc.Renderer(&bytes.Buffer{}, model.Field{ID: "n"}, ComponentData{}); err == nil {
		t.Fatalf("expected error without template renderer")
	}
}

type recordingRenderer struct {
	name string
	data map[string]any
}

func (r *recordingRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	return r.RenderTemplate(name, data, out...)
}

func (r *recordingRenderer) RenderTemplate(name string, data any, _ ...io.Writer) (string, error) {
	r.name = name
	r.data, _ = data.(map[string]any)
	return "<rendered>\n", nil
}

func (r *recordingRenderer) RenderString(string, any, ...io.Writer) (string, error) {
	return "", errors.New("not implemented")
}

func (r *recordingRenderer) RegisterFilter(string, func(any, any) (any, error)) error {
	return nil
}

func (r *recordingRenderer) GlobalContext(any) error { return nil }
