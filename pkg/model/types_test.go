package model

import "testing"

func TestIsCustomID(t *testing.T) {
	cases := map[string]bool{
		"custom-01HZY":  true,
		"default":       false,
		"code-review":   false,
		"customer-bill": false,
	}
	for id, want := range cases {
		if got := IsCustomID(id); got != want {
			t.Fatalf("IsCustomID(%q) = %v, want %v", id, got, want)
		}
	}
}

func TestFormModelField(t *testing.T) {
	form := FormModel{Fields: []Field{
		{ID: "role", Label: "Role", Type: FieldTypeText},
		{ID: "count", Label: "Count", Type: FieldTypeNumber},
	}}

	field, ok := form.Field("count")
	if !ok {
		t.Fatalf("expected count field")
	}
	if field.Type != FieldTypeNumber {
		t.Fatalf("expected number type, got %q", field.Type)
	}
	if _, ok := form.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
	if !FieldTypeTextArray.IsList() || FieldTypeText.IsList() {
		t.Fatalf("unexpected IsList results")
	}
}
