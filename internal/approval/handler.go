package approval

import (
	"context"
	"net/http"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

type ServiceAPI interface {
	ApplyTimesheetTransition(ctx context.Context, id int64, action ledger.Action, actor auth.Actor, opts Options) (*TimesheetResult, error)
	ApplyExpenseLineTransition(ctx context.Context, lineID int64, action ledger.Action, actor auth.Actor, opts Options) (*ExpenseLineResult, error)
	SubmitExpenseReport(ctx context.Context, reportID int64, actor auth.Actor) (*ExpenseReportResult, error)
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

// Timesheet serves POST /timesheets/{id}/<action>.
func (h *Handler) Timesheet(action ledger.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, id, req, ok := h.transitionInput(w, r)
		if !ok {
			return
		}

		result, err := h.Service.ApplyTimesheetTransition(r.Context(), id, action, actor, req.Options())
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, result)
	}
}

// ExpenseLine serves POST /expense-lines/{id}/<action>.
func (h *Handler) ExpenseLine(action ledger.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, id, req, ok := h.transitionInput(w, r)
		if !ok {
			return
		}

		result, err := h.Service.ApplyExpenseLineTransition(r.Context(), id, action, actor, req.Options())
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		h.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) SubmitExpenseReport(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.Service.SubmitExpenseReport(r.Context(), id, actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) transitionInput(w http.ResponseWriter, r *http.Request) (auth.Actor, int64, TransitionRequest, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return auth.Actor{}, 0, TransitionRequest{}, false
	}

	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, err)
		return auth.Actor{}, 0, TransitionRequest{}, false
	}

	req, err := DecodeTransitionRequest(r.Body)
	if err != nil {
		h.Logger.Warn("invalid transition body", "error", err, "actor_id", actor.ID)
		h.HandleServiceError(w, err)
		return auth.Actor{}, 0, TransitionRequest{}, false
	}

	return actor, id, req, true
}
