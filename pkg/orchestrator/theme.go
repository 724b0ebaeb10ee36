package orchestrator

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla"
	"github.com/goliatone/go-promptgen/pkg/renderers/vanilla/components"
	theme "github.com/goliatone/go-theme"
)

// Built-in theme identifiers. The light and dark variants back the page's
// theme toggle.
const (
	DefaultTheme   = "promptgen"
	VariantLight   = "light"
	VariantDark    = "dark"
	DefaultVariant = VariantLight
)

var (
	// ErrThemeNotFound is returned when a selection names an unknown theme.
	ErrThemeNotFound = errors.New("orchestrator: theme not found")
	// ErrVariantNotFound is returned when a selection names an unknown variant.
	ErrVariantNotFound = errors.New("orchestrator: theme variant not found")
)

// BuiltinThemeManifest describes the bundled theme. Token names map onto the
// CSS variables the vanilla stylesheet reads.
func BuiltinThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultTheme,
		Version: "1.0.0",
		Tokens: map[string]string{
			"promptgen-bg":     "#ffffff",
			"promptgen-fg":     "#1f2328",
			"promptgen-muted":  "#59636e",
			"promptgen-border": "#d1d9e0",
			"promptgen-accent": "#0969da",
			"promptgen-error":  "#d1242f",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				vanilla.StylesheetName: vanilla.StylesheetName,
				vanilla.ScriptName:     vanilla.ScriptName,
			},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"promptgen-bg":     "#0d1117",
					"promptgen-fg":     "#e6edf3",
					"promptgen-muted":  "#9198a1",
					"promptgen-border": "#3d444d",
					"promptgen-accent": "#4493f8",
					"promptgen-error":  "#f85149",
				},
			},
		},
	}
}

// defaultThemeFallbacks lists the partials renderers fall back to when a theme
// does not override them.
func defaultThemeFallbacks() map[string]string {
	return map[string]string{
		vanilla.PartialForm:      "templates/form.tmpl",
		components.PartialInput:  "templates/components/input.tmpl",
		components.PartialNumber: "templates/components/number.tmpl",
		components.PartialList:   "templates/components/list.tmpl",
	}
}

type manifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// ManifestSelector resolves theme selections from a fixed set of manifests.
// Manifests are validated through a go-theme registry on registration.
type ManifestSelector struct {
	mu             sync.RWMutex
	registry       manifestRegistry
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector registers manifests and uses defaultTheme and
// defaultVariant when a selection leaves them blank.
func NewManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*ManifestSelector, error) {
	selector := &ManifestSelector{
		registry:       theme.NewRegistry(),
		manifests:      make(map[string]*theme.Manifest),
		defaultTheme:   strings.TrimSpace(defaultTheme),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if err := selector.Register(manifest); err != nil {
			return nil, err
		}
	}
	return selector, nil
}

// Register adds a manifest. Registering a name twice is an error.
func (s *ManifestSelector) Register(manifest *theme.Manifest) error {
	if manifest == nil {
		return errors.New("orchestrator: theme manifest is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Register(manifest); err != nil {
		return fmt.Errorf("orchestrator: register theme %q: %w", manifest.Name, err)
	}
	s.manifests[manifest.Name] = manifest
	return nil
}

// Themes returns the registered theme names in sorted order.
func (s *ManifestSelector) Themes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultTheme
	}
	variant = strings.TrimSpace(variant)

	s.mu.RLock()
	manifest, ok := s.manifests[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}

	if variant == "" && name == s.defaultTheme {
		variant = s.defaultVariant
	}
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("%w: %q in theme %q", ErrVariantNotFound, variant, name)
		}
	}

	return &theme.Selection{
		Theme:    name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}

// rendererConfig flattens a selection into the structure renderers consume:
// variant tokens and templates override the base manifest, CSS variables are
// derived from tokens, and missing partials use fallbacks.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: maps.Clone(fallbacks),
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
	}
	if cfg.Partials == nil {
		cfg.Partials = map[string]string{}
	}

	manifest := selection.Manifest
	if manifest == nil {
		return cfg
	}

	prefix := manifest.Assets.Prefix
	files := maps.Clone(manifest.Assets.Files)
	if files == nil {
		files = map[string]string{}
	}
	maps.Copy(cfg.Tokens, manifest.Tokens)
	maps.Copy(cfg.Partials, manifest.Templates)

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		maps.Copy(cfg.Tokens, variant.Tokens)
		maps.Copy(cfg.Partials, variant.Templates)
		maps.Copy(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	for key, value := range cfg.Tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix = strings.TrimRight(prefix, "/")
	cfg.AssetURL = func(name string) string {
		file, ok := files[name]
		if !ok {
			file = name
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
			return file
		}
		return prefix + "/" + file
	}
	return cfg
}
