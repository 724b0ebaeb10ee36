package vanilla

import (
	"sort"
	"strings"

	"github.com/goliatone/go-promptgen/pkg/render"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla/components"
	theme "github.com/goliatone/go-theme"
)

// controlID derives a DOM id from a field id. Field ids may contain any
// character a placeholder label does, so everything outside [a-z0-9_-]
// collapses into a single dash.
func controlID(fieldID string) string {
	var b strings.Builder
	b.WriteString("pg-")
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(fieldID)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil || len(cfg.Partials) == 0 {
		return nil
	}
	return cfg.Partials
}

// cssVarsStyle renders the theme's CSS variables as a :root block with keys in
// sorted order.
func cssVarsStyle(cfg *theme.RendererConfig) string {
	if cfg == nil || len(cfg.CSSVars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(cfg.CSSVars))
	for key := range cfg.CSSVars {
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(cfg.CSSVars[key])
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

func hiddenFieldsView(fields map[string]string) []any {
	sorted := render.SortedHiddenFields(fields)
	out := make([]any, 0, len(sorted))
	for _, field := range sorted {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func scriptsView(scripts []components.Script, resolve func(string) string) []any {
	out := make([]any, 0, len(scripts))
	for _, script := range scripts {
		src := script.Src
		if resolve != nil && !strings.Contains(src, "://") && !strings.HasPrefix(src, "/") {
			src = resolve(src)
		}
		out = append(out, map[string]any{
			"src":    src,
			"defer":  script.Defer,
			"module": script.Module,
		})
	}
	return out
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, value := range values {
		out = append(out, value)
	}
	return out
}

func toAnyMap(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
