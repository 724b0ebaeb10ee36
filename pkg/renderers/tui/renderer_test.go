package tui

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	confirm      []bool
	infoMessages []string
	configs      []InputConfig
	inputPos     int
	selectPos    int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.configs = append(s.configs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func defaultForm() model.FormModel {
	return model.FormModel{
		TemplateID: "default",
		Fields: []model.Field{
			{ID: "how-many-tests?", Label: "How many tests?", Type: model.FieldTypeNumber},
			{ID: "examples", Label: "Examples", Type: model.FieldTypeTextArray},
			{ID: "role", Label: "role", Type: model.FieldTypeText},
		},
	}
}

func TestRender_CollectsEveryFieldType(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"3", "GET /items", "POST /items", "", "developer"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(context.Background(), defaultForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := map[string]any{
		"how-many-tests?": "3",
		"examples":        []any{"GET /items", "POST /items"},
		"role":            "developer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_NumberValidation(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"three", " 3.5 "},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	form := model.FormModel{Fields: []model.Field{{ID: "n", Label: "N", Type: model.FieldTypeNumber}}}

	values, err := r.Collect(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if values["n"] != "3.5" {
		t.Fatalf("expected trimmed number, got %#v", values["n"])
	}
	if len(driver.infoMessages) != 1 {
		t.Fatalf("expected one validation message, got %v", driver.infoMessages)
	}
}

func TestRender_BlankNumberIsOmitted(t *testing.T) {
	driver := &stubDriver{inputs: []string{"  "}}
	r, _ := New(WithPromptDriver(driver))
	form := model.FormModel{Fields: []model.Field{{ID: "n", Label: "N", Type: model.FieldTypeNumber}}}

	values, err := r.Collect(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"n": "4"},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if _, ok := values["n"]; ok {
		t.Fatalf("expected blank number to be omitted, got %#v", values)
	}
	if driver.configs[0].Default != "4" {
		t.Fatalf("expected prefill as default, got %q", driver.configs[0].Default)
	}
}

func TestRender_ListOffersExistingItems(t *testing.T) {
	driver := &stubDriver{inputs: []string{"a", "B", ""}}
	r, _ := New(WithPromptDriver(driver))
	form := model.FormModel{Fields: []model.Field{{ID: "items", Label: "Items", Type: model.FieldTypeTextArray}}}

	values, err := r.Collect(context.Background(), form, render.RenderOptions{
		Values: map[string]any{"items": []any{"a", "b"}},
		Errors: map[string][]string{"items": {"must not be empty"}},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "B"}, values["items"]); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	defaults := []string{driver.configs[0].Default, driver.configs[1].Default, driver.configs[2].Default}
	if diff := cmp.Diff([]string{"a", "b", ""}, defaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if driver.configs[0].Help != "✗ must not be empty" {
		t.Fatalf("expected field errors as help, got %q", driver.configs[0].Help)
	}
}

func TestRender_FormErrorsAreAnnounced(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x"}}
	r, _ := New(WithPromptDriver(driver), WithTheme(Theme{ErrorPrefix: "! "}))
	form := model.FormModel{Fields: []model.Field{{ID: "a", Label: "A", Type: model.FieldTypeText}}}

	if _, err := r.Collect(context.Background(), form, render.RenderOptions{FormErrors: []string{"stale form"}}); err != nil {
		t.Fatalf("collect: %v", err)
	}
	if diff := cmp.Diff([]string{"! stale form"}, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_FormEncodedRoundTrips(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"3", "GET /items", "POST /items", "", "developer"},
	}
	r, _ := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded))

	out, err := r.Render(context.Background(), defaultForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "examples=GET+%2Fitems&examples=POST+%2Fitems&how-many-tests%3F=3&role=developer"
	if string(out) != want {
		t.Fatalf("unexpected form body\nwant: %s\n got: %s", want, out)
	}
	if r.ContentType() != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", r.ContentType())
	}
}

func TestRender_PrettyText(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"3", "GET /items", "", "developer"},
	}
	r, _ := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	out, err := r.Render(context.Background(), defaultForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "How many tests?: 3\nExamples:\n  - GET /items\nrole: developer\n"
	if string(out) != want {
		t.Fatalf("unexpected pretty output\nwant: %q\n got: %q", want, out)
	}
}

func TestRender_SubmitTransformer(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x"}}
	r, _ := New(WithPromptDriver(driver), WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
		return nil, errors.New("rejected")
	}))
	form := model.FormModel{Fields: []model.Field{{ID: "a", Label: "A", Type: model.FieldTypeText}}}

	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected transformer error")
	}
}

func TestRender_PropagatesDriverErrors(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	form := model.FormModel{Fields: []model.Field{{ID: "a", Label: "A", Type: model.FieldTypeText}}}

	if _, err := r.Render(context.Background(), form, render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error")
	}
}

func TestRender_CancelledContext(t *testing.T) {
	r, _ := New(WithPromptDriver(&stubDriver{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, defaultForm(), render.RenderOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestState_DoesNotAliasPrefill(t *testing.T) {
	prefill := map[string]any{"items": []string{"a"}}
	state := NewState(prefill, nil)
	state.Set("role", "dev")
	if _, ok := prefill["role"]; ok {
		t.Fatalf("state mutated the prefill map")
	}
	value, _ := state.Value("items")
	value.([]string)[0] = "changed"
	if prefill["items"].([]string)[0] != "a" {
		t.Fatalf("state aliased the prefill slice")
	}
}
