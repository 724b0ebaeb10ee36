package components

// Canonical component names used by the vanilla renderer and default registry.
const (
	NameInput  = "input"
	NameNumber = "number"
	NameList   = "list"
)

// Theme partial keys that may replace a component template.
const (
	PartialInput  = "forms.input"
	PartialNumber = "forms.number"
	PartialList   = "forms.list"
)
