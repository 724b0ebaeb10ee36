package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/goliatone/go-promptgen/pkg/orchestrator"
)

const (
	sessionName     = "promptgen"
	sessionClientID = "client"
	sessionVariant  = "variant"
	// ClientIDHeader scopes JSON API state to a client.
	ClientIDHeader = "X-Client-ID"
)

type ctxKey int

const (
	clientKey ctxKey = iota
	variantKey
)

// NewSessionStore builds the cookie store holding the client id and theme
// variant. A nil key is replaced with a random one.
func NewSessionStore(key []byte, secure bool) *sessions.CookieStore {
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	cookieStore := sessions.NewCookieStore(key)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return cookieStore
}

// loadSession assigns a client id to new visitors and exposes it, with the
// theme variant, on the request context.
func (h *Handler) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := h.sessions.Get(r, sessionName)
		if err != nil {
			h.logger.WarnContext(r.Context(), "could not decode session cookie, starting a new one", "error", err)
			r.Header.Del("Cookie")
			session, err = h.sessions.New(r, sessionName)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}

		client, _ := session.Values[sessionClientID].(string)
		if client == "" {
			client = uuid.NewString()
			session.Values[sessionClientID] = client
			if err := session.Save(r, w); err != nil {
				h.logger.ErrorContext(r.Context(), "could not save session", "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		}
		variant, _ := session.Values[sessionVariant].(string)

		ctx := context.WithValue(r.Context(), clientKey, client)
		ctx = context.WithValue(ctx, variantKey, sanitizeVariant(variant))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// toggleVariant flips the stored theme variant.
func (h *Handler) toggleVariant(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return "", err
	}
	next := orchestrator.VariantDark
	if variantFrom(r.Context()) == orchestrator.VariantDark {
		next = orchestrator.VariantLight
	}
	session.Values[sessionVariant] = next
	return next, session.Save(r, w)
}

func sanitizeVariant(variant string) string {
	if variant == orchestrator.VariantDark {
		return orchestrator.VariantDark
	}
	return orchestrator.VariantLight
}

func clientFrom(ctx context.Context) string {
	client, _ := ctx.Value(clientKey).(string)
	return client
}

func variantFrom(ctx context.Context) string {
	variant, _ := ctx.Value(variantKey).(string)
	return sanitizeVariant(variant)
}

// apiClient reads the client scope of a JSON API request.
func apiClient(r *http.Request) string {
	return r.Header.Get(ClientIDHeader)
}
