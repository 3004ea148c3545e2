package expense

import (
	"context"

	"github.com/frahmantamala/workforce-portal/internal/ledger"
)

// Repository persists reports and lines. Report status is never written
// directly: ReconcileReport recomputes it from the stored lines.
type Repository interface {
	GetReport(ctx context.Context, id int64) (*Report, error)
	ListReportsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*Report, error)
	GetLine(ctx context.Context, id int64) (*Line, error)

	// ApplyLineTransition locks the line, passes it with its parent report to fn
	// and persists the line if its status is unchanged since the read.
	ApplyLineTransition(ctx context.Context, lineID int64, fn func(line *Line, report *Report) error) (before, after *Line, report *Report, err error)

	// SubmitReport locks the report, lets fn mutate report.Lines and persists
	// every line whose status changed. Report status is left to ReconcileReport.
	SubmitReport(ctx context.Context, reportID int64, fn func(report *Report) error) (*Report, error)

	// ReconcileReport locks the report, derives its status from its lines with
	// Reconcile and stores it. It returns the status before and after.
	ReconcileReport(ctx context.Context, reportID int64) (from, to ledger.Status, err error)
}
