package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/goliatone/go-promptgen/pkg/model"
)

// Keys under which preferences are stored.
const (
	KeyCustomTemplates  = "customTemplates"
	KeySelectedTemplate = "selectedTemplateId"
	FormStatePrefix     = "form-"
)

// FormStateKey returns the key holding the saved values of one template.
func FormStateKey(templateID string) string {
	return FormStatePrefix + templateID
}

// ScopedKey prefixes key with the client id. An empty client addresses the
// shared namespace.
func ScopedKey(client, key string) string {
	if client == "" {
		return key
	}
	return client + ":" + key
}

// Preferences reads and writes the typed documents the application keeps
// between sessions. Custom templates are shared; the selected template and
// form state belong to one client.
type Preferences struct {
	store Store
}

// NewPreferences wraps s. A nil store falls back to memory.
func NewPreferences(s Store) *Preferences {
	if s == nil {
		s = NewMemory()
	}
	return &Preferences{store: s}
}

// Store exposes the underlying driver.
func (p *Preferences) Store() Store {
	return p.store
}

// CustomTemplates returns the saved custom templates, or an empty list.
func (p *Preferences) CustomTemplates(ctx context.Context) ([]model.Template, error) {
	templates := make([]model.Template, 0)
	found, err := p.getJSON(ctx, KeyCustomTemplates, &templates)
	if err != nil {
		return nil, err
	}
	if !found || templates == nil {
		return make([]model.Template, 0), nil
	}
	for i := range templates {
		templates[i].Custom = true
	}
	return templates, nil
}

// SaveCustomTemplates replaces the saved custom templates.
func (p *Preferences) SaveCustomTemplates(ctx context.Context, templates []model.Template) error {
	if templates == nil {
		templates = make([]model.Template, 0)
	}
	return p.setJSON(ctx, KeyCustomTemplates, templates)
}

// SelectedTemplateID returns the template the client picked last. The empty
// string means nothing was selected.
func (p *Preferences) SelectedTemplateID(ctx context.Context, client string) (string, error) {
	value, err := p.store.Get(ctx, ScopedKey(client, KeySelectedTemplate))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(value), nil
}

// SetSelectedTemplateID records the template the client picked.
func (p *Preferences) SetSelectedTemplateID(ctx context.Context, client, templateID string) error {
	return p.store.Set(ctx, ScopedKey(client, KeySelectedTemplate), []byte(templateID))
}

// FormState returns the values the client last entered for templateID, or an
// empty map.
func (p *Preferences) FormState(ctx context.Context, client, templateID string) (map[string]any, error) {
	values := make(map[string]any)
	found, err := p.getJSON(ctx, ScopedKey(client, FormStateKey(templateID)), &values)
	if err != nil {
		return nil, err
	}
	if !found || values == nil {
		return make(map[string]any), nil
	}
	return values, nil
}

// SaveFormState stores the values the client entered for templateID.
func (p *Preferences) SaveFormState(ctx context.Context, client, templateID string, values map[string]any) error {
	if values == nil {
		values = make(map[string]any)
	}
	return p.setJSON(ctx, ScopedKey(client, FormStateKey(templateID)), values)
}

// DeleteFormState forgets the values saved for templateID.
func (p *Preferences) DeleteFormState(ctx context.Context, client, templateID string) error {
	return p.store.Delete(ctx, ScopedKey(client, FormStateKey(templateID)))
}

func (p *Preferences) getJSON(ctx context.Context, key string, target any) (bool, error) {
	data, err := p.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("store: decode %q: %w", key, err)
	}
	return true, nil
}

func (p *Preferences) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", key, err)
	}
	return p.store.Set(ctx, key, data)
}
