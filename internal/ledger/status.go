// Package ledger holds the transition rules for timesheets and expense lines.
// Every function here is pure: callers read the current state, apply a request,
// and persist the returned state.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var statuses = []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

type Action string

const (
	ActionSave    Action = "save"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var actions = []Action{ActionSave, ActionSubmit, ActionApprove, ActionReject}

func (a Action) String() string {
	return string(a)
}

func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range actions {
		if a == known {
			return a, nil
		}
	}
	return "", internal.NewValidationFieldError("action", fmt.Sprintf("unknown action %q", raw), internal.ErrCodeInvalidAction)
}

// Request is one attempted transition. IsOwner is resolved by the caller from the
// entity it just read; Now stamps submitted/approved/rejected times.
type Request struct {
	Action          Action
	IsOwner         bool
	RejectionReason string
	Now             time.Time
}

// rule is one row of a transition table.
type rule struct {
	from      []Status
	ownerOnly bool
	to        Status
}

func (r rule) allows(s Status) bool {
	for _, f := range r.from {
		if f == s {
			return true
		}
	}
	return false
}

func timePtr(t time.Time) *time.Time {
	return &t
}
