package ledger

import (
	"strings"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/core/common/validation"
)

// LineState is the part of an expense line the ledger reads and writes.
type LineState struct {
	Status          Status
	RejectionReason string
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
}

// Approvers may approve or reject a line whatever its status; the report status
// is recomputed afterwards.
var lineRules = map[Action]rule{
	ActionSubmit:  {from: []Status{StatusDraft, StatusRejected, StatusSubmitted}, ownerOnly: true, to: StatusSubmitted},
	ActionApprove: {from: statuses, to: StatusApproved},
	ActionReject:  {from: statuses, to: StatusRejected},
}

// ApplyLine validates req against cur and returns the resulting line state.
func ApplyLine(cur LineState, req Request) (LineState, error) {
	if req.Action == ActionReject {
		if err := validation.ValidateRejectionReason(req.RejectionReason); err != nil {
			return cur, err
		}
	}

	r, ok := lineRules[req.Action]
	if !ok || !r.allows(cur.Status) {
		return cur, internal.NewIllegalTransitionError(cur.Status.String(), req.Action.String())
	}
	if r.ownerOnly && !req.IsOwner {
		return cur, internal.NewForbiddenTransitionError(cur.Status.String(), req.Action.String())
	}

	next := cur
	next.Status = r.to
	switch req.Action {
	case ActionSubmit:
		next.RejectionReason = ""
		next.RejectedAt = nil
		next.ApprovedAt = nil
	case ActionApprove:
		next.RejectionReason = ""
		next.RejectedAt = nil
		next.ApprovedAt = timePtr(req.Now)
	case ActionReject:
		next.RejectionReason = strings.TrimSpace(req.RejectionReason)
		next.RejectedAt = timePtr(req.Now)
		next.ApprovedAt = nil
	}
	return next, nil
}
