package audit

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/transport"
)

var auditableEntities = map[string]bool{
	"timesheet":      true,
	"expense_line":   true,
	"expense_report": true,
}

type Handler struct {
	*transport.BaseHandler
	Repo Repository
}

func NewHandler(base *transport.BaseHandler, repo Repository) *Handler {
	return &Handler{BaseHandler: base, Repo: repo}
}

// History lists the transitions of one entity, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	if !auditableEntities[entityType] {
		h.HandleServiceError(w, internal.NewValidationFieldError("entity_type", "must be timesheet, expense_line or expense_report", internal.ErrCodeValidationFailed))
		return
	}
	entityID, err := strconv.ParseInt(r.URL.Query().Get("entity_id"), 10, 64)
	if err != nil || entityID <= 0 {
		h.HandleServiceError(w, internal.NewValidationFieldError("entity_id", "must be a positive integer", internal.ErrCodeValidationFailed))
		return
	}

	entries, err := h.Repo.ListByEntity(r.Context(), entityType, entityID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
