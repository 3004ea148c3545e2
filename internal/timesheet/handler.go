package timesheet

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

type ServiceAPI interface {
	GetTimesheet(ctx context.Context, actor auth.Actor, id int64) (*Timesheet, error)
	ListTimesheets(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Timesheet, error)
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

func (h *Handler) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	ts, err := h.Service.GetTimesheet(r.Context(), actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ts)
}

func (h *Handler) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	limit, offset := h.Pagination(r)
	list, err := h.Service.ListTimesheets(r.Context(), actor, limit, offset)
	if err != nil {
		h.Logger.Error("ListTimesheets: service error", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"timesheets": list,
		"limit":      limit,
		"offset":     offset,
	})
}
