package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm     ChromeClass = "promptgen-form"
	ClassHeader   ChromeClass = "promptgen-header"
	ClassFieldset ChromeClass = "promptgen-fieldset"
	ClassField    ChromeClass = "promptgen-field"
	ClassList     ChromeClass = "promptgen-list"
	ClassActions  ChromeClass = "promptgen-actions"
	ClassErrors   ChromeClass = "promptgen-errors"
	ClassOutput   ChromeClass = "promptgen-output"
)

// defaultClasses is the class table handed to every template.
func defaultClasses() map[string]string {
	return map[string]string{
		"form":     string(ClassForm),
		"header":   string(ClassHeader),
		"fieldset": string(ClassFieldset),
		"field":    string(ClassField),
		"list":     string(ClassList),
		"actions":  string(ClassActions),
		"errors":   string(ClassErrors),
		"output":   string(ClassOutput),
	}
}
