package expense

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

type ServiceAPI interface {
	GetReport(ctx context.Context, actor auth.Actor, id int64) (*Report, error)
	ListReports(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Report, error)
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

type ReportResponse struct {
	*Report
	Total string `json:"total"`
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
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

	report, err := h.Service.GetReport(r.Context(), actor, id)
	if err != nil {
		h.Logger.Error("GetReport: service error", "error", err, "report_id", id, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ReportResponse{Report: report, Total: report.Total().StringFixed(2)})
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}

	limit, offset := h.Pagination(r)
	reports, err := h.Service.ListReports(r.Context(), actor, limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"limit":   limit,
		"offset":  offset,
	})
}
