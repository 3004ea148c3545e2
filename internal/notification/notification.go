package notification

import (
	"context"
	"time"

	notificationDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/notification"
	"github.com/frahmantamala/workforce-portal/internal/preference"
)

type Kind string

const (
	KindTimesheetSubmitted     Kind = "timesheet_submitted"
	KindTimesheetApproved      Kind = "timesheet_approved"
	KindTimesheetRejected      Kind = "timesheet_rejected"
	KindExpenseLineApproved    Kind = "expense_line_approved"
	KindExpenseLineRejected    Kind = "expense_line_rejected"
	KindExpenseReportApproved  Kind = "expense_report_approved"
	KindExpenseReportSubmitted Kind = "expense_report_submitted"
)

// Category is the preference toggle that governs email for this kind.
func (k Kind) Category() preference.Category {
	switch k {
	case KindTimesheetSubmitted, KindTimesheetApproved, KindTimesheetRejected:
		return preference.CategoryTimesheets
	case KindExpenseLineApproved, KindExpenseLineRejected, KindExpenseReportApproved, KindExpenseReportSubmitted:
		return preference.CategoryExpenses
	default:
		return preference.CategorySystem
	}
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type EntityType string

const (
	EntityTimesheet     EntityType = "timesheet"
	EntityExpenseLine   EntityType = "expense_line"
	EntityExpenseReport EntityType = "expense_report"
)

// Metadata keys carried by intents and stored notifications.
const (
	MetaReason   = "reason"
	MetaLabel    = "label"
	MetaReportID = "report_id"
	MetaActorID  = "actor_id"
)

// Intent is the decision to tell one recipient about one event, before any delivery.
type Intent struct {
	RecipientID int64
	Kind        Kind
	Priority    Priority
	EntityType  EntityType
	EntityID    int64
	Metadata    map[string]string
}

type Notification struct {
	ID          string            `json:"id"`
	RecipientID int64             `json:"recipient_id"`
	Kind        Kind              `json:"kind"`
	Priority    Priority          `json:"priority"`
	EntityType  EntityType        `json:"entity_type"`
	EntityID    int64             `json:"entity_id"`
	Read        bool              `json:"read"`
	EmailSent   bool              `json:"email_sent"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	MarkEmailSent(ctx context.Context, id string) error
	ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	CountUnread(ctx context.Context, recipientID int64) (int64, error)
	// MarkRead and Delete only touch rows owned by recipientID.
	MarkRead(ctx context.Context, recipientID int64, id string) error
	Delete(ctx context.Context, recipientID int64, id string) error
}

func ToDataModel(n *Notification) *notificationDatamodel.Notification {
	return &notificationDatamodel.Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Kind:        string(n.Kind),
		Priority:    string(n.Priority),
		EntityType:  string(n.EntityType),
		EntityID:    n.EntityID,
		Read:        n.Read,
		EmailSent:   n.EmailSent,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
	}
}

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Kind:        Kind(n.Kind),
		Priority:    Priority(n.Priority),
		EntityType:  EntityType(n.EntityType),
		EntityID:    n.EntityID,
		Read:        n.Read,
		EmailSent:   n.EmailSent,
		Metadata:    n.Metadata,
		CreatedAt:   n.CreatedAt,
	}
}
