package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/shopspring/decimal"
)

// Report is an expense report. Its Status is derived from its lines and only
// written through Reconcile.
type Report struct {
	ID          int64         `json:"id"`
	OwnerID     int64         `json:"owner_id"`
	Title       string        `json:"title"`
	PeriodLabel string        `json:"period_label"`
	Status      ledger.Status `json:"status"`
	Lines       []*Line       `json:"lines,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Line struct {
	ID              int64           `json:"id"`
	ReportID        int64           `json:"report_id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Status          ledger.Status   `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (l *Line) State() ledger.LineState {
	return ledger.LineState{
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		ApprovedAt:      l.ApprovedAt,
		RejectedAt:      l.RejectedAt,
	}
}

func (l *Line) Apply(s ledger.LineState) {
	l.Status = s.Status
	l.RejectionReason = s.RejectionReason
	l.ApprovedAt = s.ApprovedAt
	l.RejectedAt = s.RejectedAt
}

// Total sums every line regardless of status.
func (r *Report) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range r.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

func LineStatuses(lines []*Line) []ledger.Status {
	out := make([]ledger.Status, len(lines))
	for i, l := range lines {
		out[i] = l.Status
	}
	return out
}

func ReportToDataModel(r *Report) *expenseDatamodel.ExpenseReport {
	return &expenseDatamodel.ExpenseReport{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		PeriodLabel: r.PeriodLabel,
		Status:      r.Status.String(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func ReportFromDataModel(r *expenseDatamodel.ExpenseReport) *Report {
	return &Report{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Title:       r.Title,
		PeriodLabel: r.PeriodLabel,
		Status:      ledger.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func LineToDataModel(l *Line) *expenseDatamodel.ExpenseLine {
	return &expenseDatamodel.ExpenseLine{
		ID:              l.ID,
		ReportID:        l.ReportID,
		Description:     l.Description,
		Amount:          l.Amount,
		Status:          l.Status.String(),
		RejectionReason: l.RejectionReason,
		ApprovedAt:      l.ApprovedAt,
		RejectedAt:      l.RejectedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func LineFromDataModel(l *expenseDatamodel.ExpenseLine) *Line {
	return &Line{
		ID:              l.ID,
		ReportID:        l.ReportID,
		Description:     l.Description,
		Amount:          l.Amount,
		Status:          ledger.Status(l.Status),
		RejectionReason: l.RejectionReason,
		ApprovedAt:      l.ApprovedAt,
		RejectedAt:      l.RejectedAt,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

func LinesFromDataModel(lines []*expenseDatamodel.ExpenseLine) []*Line {
	result := make([]*Line, len(lines))
	for i, l := range lines {
		result[i] = LineFromDataModel(l)
	}
	return result
}
