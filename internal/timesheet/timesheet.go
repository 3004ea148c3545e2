package timesheet

import (
	"context"
	"time"

	timesheetDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/shopspring/decimal"
)

type Timesheet struct {
	ID              int64           `json:"id"`
	OwnerID         int64           `json:"owner_id"`
	PeriodEnd       time.Time       `json:"period_end"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	Status          ledger.Status   `json:"status"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Repository persists timesheets. ApplyTransition re-reads the row inside a
// transaction, lets fn mutate it, and writes it back only if the status is
// still the one fn saw.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Timesheet, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Timesheet, error)
	ApplyTransition(ctx context.Context, id int64, fn func(ts *Timesheet) error) (before, after *Timesheet, err error)
}

func (t *Timesheet) State() ledger.TimesheetState {
	return ledger.TimesheetState{
		Status:          t.Status,
		SubmittedAt:     t.SubmittedAt,
		ApprovedAt:      t.ApprovedAt,
		RejectionReason: t.RejectionReason,
	}
}

func (t *Timesheet) Apply(s ledger.TimesheetState) {
	t.Status = s.Status
	t.SubmittedAt = s.SubmittedAt
	t.ApprovedAt = s.ApprovedAt
	t.RejectionReason = s.RejectionReason
}

// PeriodLabel is the human label used in notifications.
func (t *Timesheet) PeriodLabel() string {
	return "week ending " + t.PeriodEnd.Format("2006-01-02")
}

func ToDataModel(t *Timesheet) *timesheetDatamodel.Timesheet {
	return &timesheetDatamodel.Timesheet{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		PeriodEnd:       t.PeriodEnd,
		TotalHours:      t.TotalHours,
		Status:          t.Status.String(),
		SubmittedAt:     t.SubmittedAt,
		ApprovedAt:      t.ApprovedAt,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

func FromDataModel(t *timesheetDatamodel.Timesheet) *Timesheet {
	return &Timesheet{
		ID:              t.ID,
		OwnerID:         t.OwnerID,
		PeriodEnd:       t.PeriodEnd,
		TotalHours:      t.TotalHours,
		Status:          ledger.Status(t.Status),
		SubmittedAt:     t.SubmittedAt,
		ApprovedAt:      t.ApprovedAt,
		RejectionReason: t.RejectionReason,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
