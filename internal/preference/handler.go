package preference

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, userID int64) (*Preferences, error)
	Update(ctx context.Context, userID int64, dto UpdatePreferencesDTO) (*Preferences, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     service,
	}
}

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	prefs, err := h.Service.Get(r.Context(), actor.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	var req UpdatePreferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warn("UpdatePreferences: invalid request body", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	prefs, err := h.Service.Update(r.Context(), actor.ID, req)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, prefs)
}
