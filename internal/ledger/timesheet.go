package ledger

import (
	"strings"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/core/common/validation"
)

// TimesheetState is the part of a timesheet the ledger reads and writes.
type TimesheetState struct {
	Status          Status
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	RejectionReason string
}

var timesheetRules = map[Action]rule{
	ActionSave:    {from: []Status{StatusDraft, StatusSubmitted, StatusRejected}, ownerOnly: true, to: StatusDraft},
	ActionSubmit:  {from: []Status{StatusDraft, StatusRejected, StatusSubmitted}, ownerOnly: true, to: StatusSubmitted},
	ActionApprove: {from: []Status{StatusSubmitted}, to: StatusApproved},
	ActionReject:  {from: []Status{StatusSubmitted}, to: StatusRejected},
}

// ApplyTimesheet validates req against cur and returns the resulting state.
// On error cur is returned untouched.
func ApplyTimesheet(cur TimesheetState, req Request) (TimesheetState, error) {
	if req.Action == ActionReject {
		if err := validation.ValidateRejectionReason(req.RejectionReason); err != nil {
			return cur, err
		}
	}

	r, ok := timesheetRules[req.Action]
	if !ok || !r.allows(cur.Status) {
		return cur, internal.NewIllegalTransitionError(cur.Status.String(), req.Action.String())
	}
	if r.ownerOnly && !req.IsOwner {
		return cur, internal.NewForbiddenTransitionError(cur.Status.String(), req.Action.String())
	}

	next := cur
	next.Status = r.to
	switch req.Action {
	case ActionSave:
		next.ApprovedAt = nil
		next.RejectionReason = ""
	case ActionSubmit:
		next.SubmittedAt = timePtr(req.Now)
		next.ApprovedAt = nil
		next.RejectionReason = ""
	case ActionApprove:
		next.ApprovedAt = timePtr(req.Now)
		next.RejectionReason = ""
	case ActionReject:
		next.ApprovedAt = nil
		next.RejectionReason = strings.TrimSpace(req.RejectionReason)
	}
	return next, nil
}
