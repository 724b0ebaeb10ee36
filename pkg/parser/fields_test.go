package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-promptgen/pkg/model"
)

func TestExtractFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []model.Field
	}{
		{
			name:    "number helper",
			content: `Prepare {{field "number" "Count"}} cases.`,
			want: []model.Field{
				{ID: "count", Label: "Count", Type: model.FieldTypeNumber},
			},
		},
		{
			name:    "duplicate plain tokens",
			content: "As a {{role}} you act like a {{role}}.",
			want: []model.Field{
				{ID: "role", Label: "Role", Type: model.FieldTypeText},
			},
		},
		{
			name: "default template",
			content: `As a {{role}} create {{task}} using {{technologies}}.
Prepare {{field "number" "How many tests?"}} test cases.
Examples:
{{field "text array" "Examples"}}`,
			want: []model.Field{
				{ID: "how-many-tests?", Label: "How many tests?", Type: model.FieldTypeNumber},
				{ID: "examples", Label: "Examples", Type: model.FieldTypeTextArray},
				{ID: "role", Label: "Role", Type: model.FieldTypeText},
				{ID: "task", Label: "Task", Type: model.FieldTypeText},
				{ID: "technologies", Label: "Technologies", Type: model.FieldTypeText},
			},
		},
		{
			name:    "plain token matching a helper id is skipped",
			content: `{{field "text" "Role"}} and {{role}}`,
			want: []model.Field{
				{ID: "role", Label: "Role", Type: model.FieldTypeText},
			},
		},
		{
			name:    "repeated helper kept once",
			content: `{{field "text" "Goal"}} / {{field "number" "Goal"}}`,
			want: []model.Field{
				{ID: "goal", Label: "Goal", Type: model.FieldTypeText},
			},
		},
		{
			name:    "whitespace runs collapse in ids",
			content: "{{field \"text\" \"Target  \t Audience\"}}",
			want: []model.Field{
				{ID: "target-audience", Label: "Target  \t Audience", Type: model.FieldTypeText},
			},
		},
		{
			name:    "token whitespace trimmed",
			content: "{{  language }}",
			want: []model.Field{
				{ID: "language", Label: "Language", Type: model.FieldTypeText},
			},
		},
		{
			name:    "malformed helper ignored",
			content: `{{field "number"}} and {{field number "Count"}}`,
			want:    []model.Field{},
		},
		{
			name:    "unterminated tokens ignored",
			content: "{{role and {task}} and {{}}",
			want:    []model.Field{},
		},
		{
			name:    "unknown helper types pass through",
			content: `{{field "date" "Due"}}`,
			want: []model.Field{
				{ID: "due", Label: "Due", Type: model.FieldType("date")},
			},
		},
		{
			name:    "no placeholders",
			content: "plain text",
			want:    []model.Field{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractFields(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldID(t *testing.T) {
	cases := map[string]string{
		"Count":                    "count",
		"How many tests?":          "how-many-tests?",
		"Primary Language":         "primary-language",
		"  padded ":                "-padded-",
		"How\u00a0many\u2003tests": "how-many-tests",
		"Line\u2028break\ufeff":    "line-break-",
		"Tab\v\tstop":              "tab-stop",
	}
	for label, want := range cases {
		if got := FieldID(label); got != want {
			t.Fatalf("FieldID(%q) = %q, want %q", label, got, want)
		}
	}
}
