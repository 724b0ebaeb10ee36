package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"

	"github.com/goliatone/go-promptgen/internal/middleware"
)

// Routes builds the router with the full middleware chain.
func (h *Handler) Routes() (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(h.logger, h.metrics))
	r.Use(middleware.Recoverer(h.logger))

	r.Get("/healthz", h.healthz)
	r.Get("/readyz", h.readyz)
	if h.deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", h.deps.MetricsHandler)
	}
	if len(h.deps.OpenAPIYAML) > 0 {
		r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(h.deps.OpenAPIYAML)
		})
	}
	if h.deps.Assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(h.deps.Assets))))
	}

	var validate func(http.Handler) http.Handler
	if h.deps.OpenAPI != nil {
		v, err := middleware.ValidateRequests(h.deps.OpenAPI, h.logger)
		if err != nil {
			return nil, err
		}
		validate = v
	}
	r.Route("/api/v1", func(r chi.Router) {
		if validate != nil {
			r.Use(validate)
		}
		r.Get("/templates", h.listTemplates)
		r.Post("/templates", h.createTemplate)
		r.Get("/templates/{id}", h.getTemplate)
		r.Delete("/templates/{id}", h.deleteTemplateAPI)
		r.Get("/templates/{id}/fields", h.listFields)
		r.Post("/templates/{id}/render", h.renderPrompt)
		r.Get("/templates/{id}/state", h.getState)
		r.Put("/templates/{id}/state", h.putState)
	})

	csrfKey := h.deps.CSRFKey
	if len(csrfKey) == 0 {
		csrfKey = securecookie.GenerateRandomKey(32)
	}
	protect := csrf.Protect(csrfKey,
		csrf.Secure(h.deps.SecureCookie),
		csrf.Path("/"),
		csrf.FieldName(csrfFieldName),
		csrf.ErrorHandler(http.HandlerFunc(h.csrfFailure)),
	)

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Use(h.loadSession)

		r.Get("/", h.index)
		r.Get("/t/{id}", h.showTemplate)
		r.Post("/t/{id}", h.generatePrompt)
		r.Get("/settings", h.settings)
		r.Post("/settings/templates", h.addTemplate)
		r.Post("/settings/templates/{id}/delete", h.deleteTemplate)
		r.Post("/theme", h.toggleTheme)
		r.Get("/ws/templates/{id}", h.preview)
	})

	return r, nil
}

func (h *Handler) csrfFailure(w http.ResponseWriter, r *http.Request) {
	h.logger.WarnContext(r.Context(), "csrf validation failed", "reason", csrf.FailureReason(r))
	http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
}
