// Package handler serves the HTML pages, the JSON API and the live preview.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gorilla/sessions"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-promptgen/internal/metrics"
	"github.com/goliatone/go-promptgen/pkg/catalog"
	"github.com/goliatone/go-promptgen/pkg/gist"
	"github.com/goliatone/go-promptgen/pkg/orchestrator"
	rendertemplate "github.com/goliatone/go-promptgen/pkg/render/template"
	"github.com/goliatone/go-promptgen/pkg/render/template/gotemplate"
	"github.com/goliatone/go-promptgen/pkg/store"
)

// Deps wires the handler to the application services.
type Deps struct {
	Catalog      *catalog.Catalog
	Orchestrator *orchestrator.Orchestrator
	Preferences  *store.Preferences
	// Store is pinged by /readyz. Optional.
	Store store.Store
	// Sessions backs the client cookie. Defaults to a cookie store with a
	// random key.
	Sessions sessions.Store
	// CSRFKey must be 32 bytes. A random key is generated when empty.
	CSRFKey      []byte
	SecureCookie bool
	// OpenAPI validates JSON API requests when set.
	OpenAPI     *openapi3.T
	OpenAPIYAML []byte
	// Metrics records application events; MetricsHandler serves /metrics.
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	// Assets is served under /assets/.
	Assets fs.FS
	Logger *slog.Logger
}

// Handler holds the dependencies shared by every route.
type Handler struct {
	catalog  *catalog.Catalog
	orch     *orchestrator.Orchestrator
	prefs    *store.Preferences
	store    store.Store
	sessions sessions.Store
	pages    rendertemplate.TemplateRenderer
	metrics  metrics.Recorder
	logger   *slog.Logger
	upgrader websocket.Upgrader
	deps     Deps
}

// New validates deps and builds a Handler.
func New(deps Deps) (*Handler, error) {
	if deps.Catalog == nil {
		return nil, errors.New("handler: catalog is required")
	}
	if deps.Orchestrator == nil {
		return nil, errors.New("handler: orchestrator is required")
	}
	if deps.Preferences == nil {
		deps.Preferences = store.NewPreferences(deps.Store)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoop()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionStore(nil, deps.SecureCookie)
	}

	pagesFS, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("handler: page templates: %w", err)
	}
	pages, err := gotemplate.New(
		gotemplate.WithFS(pagesFS),
		gotemplate.WithExtension(".tmpl"),
	)
	if err != nil {
		return nil, fmt.Errorf("handler: page engine: %w", err)
	}

	return &Handler{
		catalog:  deps.Catalog,
		orch:     deps.Orchestrator,
		prefs:    deps.Preferences,
		store:    deps.Store,
		sessions: deps.Sessions,
		pages:    pages,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		deps:     deps,
	}, nil
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrTemplateNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalog.ErrNameRequired),
		errors.Is(err, catalog.ErrContentRequired),
		errors.Is(err, catalog.ErrGistUnavailable),
		errors.Is(err, gist.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, gist.ErrFetchFailed), errors.Is(err, gist.ErrNoFiles):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error text behind the status text.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: publicMessage(status, err)})
}
