package approval

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/shopspring/decimal"
)

// TransitionRequest is the optional body of a transition call.
type TransitionRequest struct {
	RejectionReason string           `json:"rejection_reason,omitempty"`
	TotalHours      *decimal.Decimal `json:"total_hours,omitempty"`
}

func (r TransitionRequest) Options() Options {
	return Options{RejectionReason: r.RejectionReason, TotalHours: r.TotalHours}
}

// DecodeTransitionRequest reads body; an empty body is an empty request.
func DecodeTransitionRequest(body io.Reader) (TransitionRequest, error) {
	var req TransitionRequest
	if body == nil {
		return req, nil
	}
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return req, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed).WithCause(err)
	}
	return req, nil
}
