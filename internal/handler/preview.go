package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/goliatone/go-promptgen/pkg/model"
	"github.com/goliatone/go-promptgen/pkg/prompt"
	"github.com/goliatone/go-promptgen/pkg/render"
)

const (
	previewReadLimit = 64 << 10
	previewIdle      = 10 * time.Minute
	previewWriteWait = 10 * time.Second
)

// previewMessage is one client update.
type previewMessage struct {
	Values map[string]any `json:"values"`
}

// previewReply answers every update with the prompt or the reasons there is
// none.
type previewReply struct {
	Prompt string              `json:"prompt,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// preview upgrades to a websocket. Every message carries the form values; the
// values are saved as the client's form state and the filled prompt is sent
// back.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	client := clientFrom(ctx)

	form, err := h.orch.Form(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "preview upgrade failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	h.metrics.SetPreviewConnections(1)
	defer h.metrics.SetPreviewConnections(-1)

	conn.SetReadLimit(previewReadLimit)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(previewIdle))
		var msg previewMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !isClosed(err) {
				h.logger.DebugContext(ctx, "preview read failed", "template_id", id, "error", err)
			}
			return
		}
		h.metrics.IncPreviewMessage()

		reply := h.previewReply(ctx, client, form, msg.Values)
		_ = conn.SetWriteDeadline(time.Now().Add(previewWriteWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.DebugContext(ctx, "preview write failed", "template_id", id, "error", err)
			return
		}
	}
}

func (h *Handler) previewReply(ctx context.Context, client string, form model.FormModel, raw map[string]any) previewReply {
	if fieldErrors := render.ValidateValues(form, raw); len(fieldErrors) > 0 {
		return previewReply{Errors: fieldErrors}
	}
	values := render.NormalizeValues(form, raw)
	if err := h.prefs.SaveFormState(ctx, client, form.TemplateID, values); err != nil {
		h.logger.WarnContext(ctx, "could not save form state", "template_id", form.TemplateID, "error", err)
	}
	text, err := h.orch.Compose(ctx, form.TemplateID, values)
	if err != nil {
		return previewReply{Error: prompt.ErrorMessage}
	}
	return previewReply{Prompt: text}
}

func isClosed(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr)
}
