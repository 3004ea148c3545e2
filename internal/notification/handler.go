package notification

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

type ServiceAPI interface {
	List(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, recipientID int64, id string) error
	Delete(ctx context.Context, recipientID int64, id string) error
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	limit, offset := h.Pagination(r)

	items, err := h.Service.List(r.Context(), actor.ID, unreadOnly, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), actor.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	id, err := notificationID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.MarkRead(r.Context(), actor.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	id, err := notificationID(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.Delete(r.Context(), actor.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func notificationID(r *http.Request) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return "", internal.NewValidationFieldError("id", "must be a uuid", internal.ErrCodeValidationFailed)
	}
	return id.String(), nil
}
