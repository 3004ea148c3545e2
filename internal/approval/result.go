package approval

import (
	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/shopspring/decimal"
)

// Options carries the optional inputs of a transition.
type Options struct {
	RejectionReason string
	// TotalHours replaces the recorded hours on save.
	TotalHours *decimal.Decimal
}

// TimesheetResult is returned once the new status is stored. Warnings list
// what went wrong after the commit.
type TimesheetResult struct {
	Status    ledger.Status      `json:"status"`
	Committed bool               `json:"committed"`
	Warnings  []internal.Warning `json:"warnings"`
}

type ExpenseLineResult struct {
	LineStatus   ledger.Status      `json:"line_status"`
	ReportStatus ledger.Status      `json:"report_status"`
	Committed    bool               `json:"committed"`
	Warnings     []internal.Warning `json:"warnings"`
}

type ExpenseReportResult struct {
	ReportStatus   ledger.Status      `json:"report_status"`
	SubmittedLines int                `json:"submitted_lines"`
	Committed      bool               `json:"committed"`
	Warnings       []internal.Warning `json:"warnings"`
}
