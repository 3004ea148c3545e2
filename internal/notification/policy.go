package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/preference"
)

// ErrNoRecipient is returned when a submission has neither a manager nor a
// configured default recipient to go to.
var ErrNoRecipient = errors.New("no manager or default recipient for submission")

// ManagerResolver finds the manager of a user.
type ManagerResolver interface {
	ManagerOf(ctx context.Context, userID int64) (managerID int64, ok bool, err error)
}

// Transition describes a committed status change the policy reacts to.
type Transition struct {
	EntityType      EntityType
	EntityID        int64
	Action          ledger.Action
	ActorID         int64
	OwnerID         int64
	RejectionReason string
	// ReportID is the parent report of an expense line.
	ReportID int64
	// ReportApproved is set when this transition moved the parent report to approved.
	ReportApproved bool
	// Label is a human readable name of the entity used in messages.
	Label string
}

// Suppression reasons reported by Decide.
const (
	ReasonCategoryDisabled = "category_disabled"
	ReasonEmailDisabled    = "email_disabled"
	ReasonQuietHours       = "quiet_hours"
)

type Decision struct {
	Email  bool
	Reason string
}

type Policy struct {
	managers           ManagerResolver
	defaultRecipientID int64
	location           *time.Location
}

func NewPolicy(managers ManagerResolver, defaultRecipientID int64, location *time.Location) *Policy {
	if location == nil {
		location = time.UTC
	}
	return &Policy{
		managers:           managers,
		defaultRecipientID: defaultRecipientID,
		location:           location,
	}
}

// Intents lists who should hear about t. A save produces nothing.
func (p *Policy) Intents(ctx context.Context, t Transition) ([]Intent, error) {
	meta := map[string]string{MetaActorID: strconv.FormatInt(t.ActorID, 10)}
	if t.Label != "" {
		meta[MetaLabel] = t.Label
	}

	switch t.EntityType {
	case EntityTimesheet:
		switch t.Action {
		case ledger.ActionSubmit:
			recipient, err := p.approverOf(ctx, t.OwnerID)
			if err != nil {
				return nil, err
			}
			return []Intent{p.intent(recipient, KindTimesheetSubmitted, PriorityHigh, t, meta)}, nil
		case ledger.ActionApprove:
			return []Intent{p.intent(t.OwnerID, KindTimesheetApproved, PriorityMedium, t, meta)}, nil
		case ledger.ActionReject:
			meta[MetaReason] = t.RejectionReason
			return []Intent{p.intent(t.OwnerID, KindTimesheetRejected, PriorityMedium, t, meta)}, nil
		}

	case EntityExpenseLine:
		meta[MetaReportID] = strconv.FormatInt(t.ReportID, 10)
		switch t.Action {
		case ledger.ActionReject:
			meta[MetaReason] = t.RejectionReason
			return []Intent{p.intent(t.OwnerID, KindExpenseLineRejected, PriorityHigh, t, meta)}, nil
		case ledger.ActionApprove:
			if t.ReportApproved {
				reportLevel := t
				reportLevel.EntityType = EntityExpenseReport
				reportLevel.EntityID = t.ReportID
				return []Intent{p.intent(t.OwnerID, KindExpenseReportApproved, PriorityMedium, reportLevel, meta)}, nil
			}
			return []Intent{p.intent(t.OwnerID, KindExpenseLineApproved, PriorityMedium, t, meta)}, nil
		}

	case EntityExpenseReport:
		if t.Action == ledger.ActionSubmit {
			recipient, err := p.approverOf(ctx, t.OwnerID)
			if err != nil {
				return nil, err
			}
			return []Intent{p.intent(recipient, KindExpenseReportSubmitted, PriorityHigh, t, meta)}, nil
		}
	}

	return nil, nil
}

func (p *Policy) intent(recipient int64, kind Kind, priority Priority, t Transition, meta map[string]string) Intent {
	return Intent{
		RecipientID: recipient,
		Kind:        kind,
		Priority:    priority,
		EntityType:  t.EntityType,
		EntityID:    t.EntityID,
		Metadata:    meta,
	}
}

func (p *Policy) approverOf(ctx context.Context, ownerID int64) (int64, error) {
	managerID, ok, err := p.managers.ManagerOf(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("resolve manager of user %d: %w", ownerID, err)
	}
	if ok {
		return managerID, nil
	}
	if p.defaultRecipientID != 0 {
		return p.defaultRecipientID, nil
	}
	return 0, ErrNoRecipient
}

// Decide says whether intent may go out by email. The in-app record is
// created regardless of the decision.
func (p *Policy) Decide(intent Intent, prefs *preference.Preferences, now time.Time) Decision {
	if !prefs.CategoryEnabled(intent.Kind.Category()) {
		return Decision{Reason: ReasonCategoryDisabled}
	}
	if !prefs.Channels.Email {
		return Decision{Reason: ReasonEmailDisabled}
	}
	if prefs.Frequency == preference.FrequencyDaily &&
		prefs.QuietHours.Enabled &&
		intent.Priority != PriorityCritical &&
		prefs.QuietHours.Contains(now.In(p.location)) {
		return Decision{Reason: ReasonQuietHours}
	}
	return Decision{Email: true}
}
