package model_test

import (
	"errors"
	"path/filepath"
	"testing"

	internalmodel "github.com/goliatone/go-promptgen/internal/model"
	pkgmodel "github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/testsupport"
)

func TestBuilder_DefaultTemplate(t *testing.T) {
	tpl := testsupport.LoadTemplate(t, filepath.Join("testdata", "default.md"))

	builder := internalmodel.New(internalmodel.Options{
		Action: func(tpl pkgmodel.Template) string { return "/t/" + tpl.ID },
	})
	form, err := builder.Build(tpl)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	goldenPath := filepath.Join("testdata", "default_formmodel.golden.json")
	testsupport.WriteFormModel(t, goldenPath, form)
	want := testsupport.MustLoadFormModel(t, goldenPath)

	if diff := testsupport.CompareGolden(want, form); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_CustomTemplateMetadata(t *testing.T) {
	builder := internalmodel.New(internalmodel.Options{Method: "put"})
	form, err := builder.Build(pkgmodel.Template{
		ID:      "custom-01J0000000000000000000000",
		Name:    "Mine",
		Content: "Hello {{who}}",
		Custom:  true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if form.Method != "PUT" {
		t.Fatalf("expected method PUT, got %q", form.Method)
	}
	if form.Action != "" {
		t.Fatalf("expected empty action without resolver, got %q", form.Action)
	}
	if form.Metadata[internalmodel.MetadataCustom] != "true" {
		t.Fatalf("expected custom metadata, got %#v", form.Metadata)
	}
	want := []pkgmodel.Field{{ID: "who", Label: "Who", Type: pkgmodel.FieldTypeText}}
	if diff := testsupport.CompareGolden(want, form.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_NoFieldsYieldsEmptySlice(t *testing.T) {
	form, err := internalmodel.New(internalmodel.Options{}).Build(pkgmodel.Template{ID: "plain", Name: "Plain", Content: "no placeholders"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if form.Fields == nil || len(form.Fields) != 0 {
		t.Fatalf("expected empty non-nil fields, got %#v", form.Fields)
	}
	if form.Metadata != nil {
		t.Fatalf("expected nil metadata, got %#v", form.Metadata)
	}
}

func TestBuilder_RequiresTemplateID(t *testing.T) {
	if _, err := internalmodel.New(internalmodel.Options{}).Build(pkgmodel.Template{Name: "x"}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestBuilder_HumanizeLabeler(t *testing.T) {
	builder := internalmodel.New(internalmodel.Options{Labeler: internalmodel.HumanizeLabeler})
	form, err := builder.Build(pkgmodel.Template{
		ID:      "stack",
		Content: `{{tech_stack}} {{targetUser}} {{field "text" "keep me_as is"}}`,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	got := map[string]string{}
	for _, field := range form.Fields {
		got[field.ID] = field.Label
	}
	want := map[string]string{
		"keep-me_as-is": "keep me_as is",
		"tech_stack":    "Tech Stack",
		"targetUser":    "Target User",
	}
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestBuilder_DecoratorErrorsAreWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	builder := internalmodel.New(internalmodel.Options{
		Decorators: []pkgmodel.Decorator{
			pkgmodel.DecoratorFunc(func(form *pkgmodel.FormModel) error {
				form.Metadata["seen"] = "yes"
				return nil
			}),
			pkgmodel.DecoratorFunc(func(*pkgmodel.FormModel) error { return sentinel }),
		},
	})
	_, err := builder.Build(pkgmodel.Template{ID: "x"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}
