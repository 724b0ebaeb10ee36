package handler

import (
	"bytes"
	"embed"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	"github.com/goliatone/go-promptgen/pkg/render"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// csrfFieldName is the form field gorilla/csrf reads the token from.
const csrfFieldName = "gorilla.csrf.Token"

func templatePath(id string) string {
	return orchestrator.FormAction(model.Template{ID: id})
}

// index redirects to the template the client used last, or the first one.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.catalog.List(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if len(templates) == 0 {
		h.renderError(w, r, errNoTemplates)
		return
	}

	target := templates[0].ID
	selected, err := h.prefs.SelectedTemplateID(ctx, clientFrom(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "could not read selected template", "error", err)
	}
	for _, tpl := range templates {
		if selected != "" && tpl.ID == selected {
			target = selected
			break
		}
	}
	http.Redirect(w, r, templatePath(target), http.StatusSeeOther)
}

// showTemplate renders the form of one template prefilled with the client's
// saved values.
func (h *Handler) showTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	client := clientFrom(ctx)

	tpl, err := h.catalog.Find(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.prefs.SetSelectedTemplateID(ctx, client, id); err != nil {
		h.logger.WarnContext(ctx, "could not save selected template", "error", err)
	}
	values, err := h.prefs.FormState(ctx, client, id)
	if err != nil {
		h.logger.WarnContext(ctx, "could not read form state", "template_id", id, "error", err)
		values = nil
	}

	form, err := h.orch.Generate(ctx, orchestrator.Request{
		TemplateID:   id,
		Values:       values,
		Hidden:       csrfHidden(r),
		ThemeVariant: variantFrom(ctx),
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, http.StatusOK, "template", map[string]any{
		"title":    tpl.Name,
		"template": tpl,
		"form":     string(form),
	})
}

// generatePrompt decodes a form submission, stores it as the client's form
// state and renders the form with the filled prompt.
func (h *Handler) generatePrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, badRequest(err))
		return
	}
	tpl, err := h.catalog.Find(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	formModel, err := h.orch.Form(ctx, id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	values := render.DecodeSubmission(formModel, r.PostForm)
	fieldErrors := render.ValidateValues(formModel, values)
	if err := h.prefs.SaveFormState(ctx, clientFrom(ctx), id, values); err != nil {
		h.logger.WarnContext(ctx, "could not save form state", "template_id", id, "error", err)
	}

	status := http.StatusOK
	if len(fieldErrors) > 0 {
		status = http.StatusUnprocessableEntity
		h.metrics.IncPromptGenerated("invalid")
	}

	form, err := h.orch.Generate(ctx, orchestrator.Request{
		TemplateID:   id,
		Values:       values,
		Errors:       fieldErrors,
		Hidden:       csrfHidden(r),
		ThemeVariant: variantFrom(ctx),
		Compose:      true,
	})
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, status, "template", map[string]any{
		"title":    tpl.Name,
		"template": tpl,
		"form":     string(form),
	})
}

// settings lists the custom templates and the form to add one.
func (h *Handler) settings(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, http.StatusOK, "", "", "")
}

func (h *Handler) renderSettings(w http.ResponseWriter, r *http.Request, status int, message, name, content string) {
	custom, err := h.catalog.Custom(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	h.renderPage(w, r, status, "settings", map[string]any{
		"title":   "Settings",
		"custom":  custom,
		"message": message,
		"name":    name,
		"content": content,
	})
}

// addTemplate saves a custom template, importing Gist links.
func (h *Handler) addTemplate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, badRequest(err))
		return
	}
	name := r.PostForm.Get("name")
	content := r.PostForm.Get("content")

	tpl, err := h.catalog.AddCustom(r.Context(), name, content)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.renderError(w, r, err)
			return
		}
		h.renderSettings(w, r, status, err.Error(), name, content)
		return
	}
	h.metrics.IncTemplateChange("add")
	http.Redirect(w, r, templatePath(tpl.ID), http.StatusSeeOther)
}

// deleteTemplate removes a custom template and the client's state for it.
func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := h.catalog.DeleteCustom(ctx, id); err != nil {
		h.renderError(w, r, err)
		return
	}
	if err := h.prefs.DeleteFormState(ctx, clientFrom(ctx), id); err != nil {
		h.logger.WarnContext(ctx, "could not delete form state", "template_id", id, "error", err)
	}
	h.metrics.IncTemplateChange("delete")
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// toggleTheme switches between the light and dark variants.
func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, badRequest(err))
		return
	}
	if _, err := h.toggleVariant(w, r); err != nil {
		h.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, safeReturnPath(r.PostForm.Get("return")), http.StatusSeeOther)
}

// safeReturnPath only allows local absolute paths.
func safeReturnPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host != "" || parsed.Scheme != "" {
		return "/"
	}
	return parsed.RequestURI()
}

func csrfHidden(r *http.Request) map[string]string {
	token := csrf.Token(r)
	if token == "" {
		return nil
	}
	return render.MergeHiddenFields(nil, render.CSRFToken(csrfFieldName, token))
}

// renderPage renders a full page, adding the navigation data every page
// shares.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	templates, err := h.catalog.Search(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "could not list templates", "error", err)
		templates = nil
	}

	nav := make([]any, 0, len(templates))
	for _, tpl := range templates {
		nav = append(nav, map[string]any{
			"id":     tpl.ID,
			"name":   tpl.Name,
			"custom": tpl.Custom,
			"href":   templatePath(tpl.ID),
		})
	}

	payload := map[string]any{
		"templates":  nav,
		"query":      query,
		"variant":    variantFrom(ctx),
		"csrfField":  string(csrf.TemplateField(r)),
		"currentURL": r.URL.RequestURI(),
	}
	for key, value := range data {
		payload[key] = value
	}
	if tpl, ok := data["template"].(model.Template); ok {
		payload["template"] = map[string]any{
			"id":          tpl.ID,
			"name":        tpl.Name,
			"description": tpl.Description,
			"custom":      tpl.Custom,
			"previewURL":  "/ws/templates/" + url.PathEscape(tpl.ID),
		}
		payload["selectedID"] = tpl.ID
	}

	var buf bytes.Buffer
	if _, err := h.pages.RenderTemplate(page, payload, &buf); err != nil {
		h.logger.ErrorContext(ctx, "could not render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	h.renderPage(w, r, status, "error", map[string]any{
		"title":   http.StatusText(status),
		"status":  status,
		"message": publicMessage(status, err),
	})
}
