// Package testsupport holds fixture and golden-file helpers shared by the
// package tests. Set UPDATE_GOLDENS=1 to rewrite goldens from current output.
package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/parser"
)

const updateEnv = "UPDATE_GOLDENS"

// Context returns the context tests pass to services.
func Context() context.Context {
	return context.Background()
}

// LoadTemplate parses a prompt template document. The file name without its
// .md extension becomes the template id.
func LoadTemplate(t *testing.T, path string) model.Template {
	t.Helper()

	data := MustReadGolden(t, path)
	tpl, err := parser.ParseDocument(string(data), filepath.Base(path))
	if err != nil {
		t.Fatalf("parse template %s: %v", path, err)
	}
	return tpl
}

// MustLoadFormModel decodes a form model golden.
func MustLoadFormModel(t *testing.T, path string) model.FormModel {
	t.Helper()

	var form model.FormModel
	if err := json.Unmarshal(MustReadGolden(t, path), &form); err != nil {
		t.Fatalf("decode form model %s: %v", path, err)
	}
	return form
}

// WriteFormModel rewrites a form model golden in update mode.
func WriteFormModel(t *testing.T, path string, form model.FormModel) {
	t.Helper()

	if !updating() {
		return
	}
	payload, err := json.MarshalIndent(form, "", "  ")
	if err != nil {
		t.Fatalf("encode form model: %v", err)
	}
	writeFile(t, path, payload)
}

// WriteMaybeGolden rewrites a golden in update mode and reports whether it
// did, in which case the caller skips its comparison.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if !updating() {
		return false
	}
	writeFile(t, path, data)
	return true
}

// CompareGolden returns a diff, empty when want and got match.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput runs render with a buffer and returns both the result
// and what was written to the buffer.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

func updating() bool {
	return os.Getenv(updateEnv) != ""
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden %s: %v", path, err)
	}
}
