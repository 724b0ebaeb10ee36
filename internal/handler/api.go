package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/render"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

type templatesResponse struct {
	Templates []model.Template `json:"templates"`
}

type fieldsResponse struct {
	Fields []model.Field `json:"fields"`
}

type newTemplateRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type valuesPayload struct {
	Values map[string]any `json:"values"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := decoder.Decode(target); err != nil {
		return badRequest(err)
	}
	return nil
}

// listTemplates handles GET /api/v1/templates.
func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templatesResponse{Templates: templates})
}

// createTemplate handles POST /api/v1/templates.
func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req newTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	tpl, err := h.catalog.AddCustom(r.Context(), req.Name, req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.IncTemplateChange("add")
	w.Header().Set("Location", "/api/v1/templates/"+tpl.ID)
	writeJSON(w, http.StatusCreated, tpl)
}

// getTemplate handles GET /api/v1/templates/{id}.
func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.catalog.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// deleteTemplateAPI handles DELETE /api/v1/templates/{id}. Built-in
// templates cannot be deleted and answer 404.
func (h *Handler) deleteTemplateAPI(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteCustom(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.metrics.IncTemplateChange("delete")
	w.WriteHeader(http.StatusNoContent)
}

// listFields handles GET /api/v1/templates/{id}/fields.
func (h *Handler) listFields(w http.ResponseWriter, r *http.Request) {
	form, err := h.orch.Form(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fieldsResponse{Fields: form.Fields})
}

// renderPrompt handles POST /api/v1/templates/{id}/render.
func (h *Handler) renderPrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req valuesPayload
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	form, err := h.orch.Form(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if fieldErrors := render.ValidateValues(form, req.Values); len(fieldErrors) > 0 {
		h.metrics.IncPromptGenerated("invalid")
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid values", Fields: fieldErrors})
		return
	}

	text, err := h.orch.Compose(ctx, id, render.NormalizeValues(form, req.Values))
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: prompt.ErrorMessage})
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: text})
}

// getState handles GET /api/v1/templates/{id}/state.
func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if _, err := h.catalog.Find(ctx, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	values, err := h.prefs.FormState(ctx, apiClient(r), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valuesPayload{Values: values})
}

// putState handles PUT /api/v1/templates/{id}/state.
func (h *Handler) putState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req valuesPayload
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	form, err := h.orch.Form(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if fieldErrors := render.ValidateValues(form, req.Values); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid values", Fields: fieldErrors})
		return
	}
	if err := h.prefs.SaveFormState(ctx, apiClient(r), id, render.NormalizeValues(form, req.Values)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
