package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/workforce-portal/internal"
	expenseDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/workforce-portal/internal/expense"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ExpenseRepository implements the expense.Repository interface using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) expense.Repository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) GetReport(ctx context.Context, id int64) (*expense.Report, error) {
	db := r.db.WithContext(ctx)
	report, err := loadReport(db, id, false)
	if err != nil {
		return nil, err
	}
	lines, err := loadLines(db, id)
	if err != nil {
		return nil, err
	}
	report.Lines = lines
	return report, nil
}

func (r *ExpenseRepository) ListReportsByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*expense.Report, error) {
	var rows []*expenseDatamodel.ExpenseReport
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list reports of owner %d: %w", ownerID, err)
	}
	result := make([]*expense.Report, len(rows))
	for i, row := range rows {
		result[i] = expense.ReportFromDataModel(row)
	}
	return result, nil
}

func (r *ExpenseRepository) GetLine(ctx context.Context, id int64) (*expense.Line, error) {
	return loadLine(r.db.WithContext(ctx), id, false)
}

func (r *ExpenseRepository) ApplyLineTransition(ctx context.Context, lineID int64, fn func(line *expense.Line, report *expense.Report) error) (*expense.Line, *expense.Line, *expense.Report, error) {
	var before, after *expense.Line
	var report *expense.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		before, err = loadLine(tx, lineID, true)
		if err != nil {
			return err
		}
		report, err = loadReport(tx, before.ReportID, false)
		if err != nil {
			return err
		}

		next := *before
		if err := fn(&next, report); err != nil {
			return err
		}
		if err := updateLine(tx, before.Status, &next); err != nil {
			return err
		}
		after, err = loadLine(tx, lineID, false)
		return err
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return before, after, report, nil
}

func (r *ExpenseRepository) SubmitReport(ctx context.Context, reportID int64, fn func(report *expense.Report) error) (*expense.Report, error) {
	var report *expense.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		report, err = loadReport(tx, reportID, true)
		if err != nil {
			return err
		}
		lines, err := loadLines(tx, reportID)
		if err != nil {
			return err
		}

		previous := make(map[int64]ledger.Status, len(lines))
		report.Lines = make([]*expense.Line, len(lines))
		for i, l := range lines {
			previous[l.ID] = l.Status
			clone := *l
			report.Lines[i] = &clone
		}

		if err := fn(report); err != nil {
			return err
		}

		for _, l := range report.Lines {
			if l.Status == previous[l.ID] && l.Status != ledger.StatusSubmitted {
				continue
			}
			if err := updateLine(tx, previous[l.ID], l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *ExpenseRepository) ReconcileReport(ctx context.Context, reportID int64) (ledger.Status, ledger.Status, error) {
	var from, to ledger.Status

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report, err := loadReport(tx, reportID, true)
		if err != nil {
			return err
		}

		var statuses []string
		if err := tx.Model(&expenseDatamodel.ExpenseLine{}).
			Where("report_id = ?", reportID).
			Pluck("status", &statuses).Error; err != nil {
			return fmt.Errorf("load line statuses of report %d: %w", reportID, err)
		}

		lineStatuses := make([]ledger.Status, len(statuses))
		for i, s := range statuses {
			lineStatuses[i] = ledger.Status(s)
		}

		from = report.Status
		to = expense.Reconcile(lineStatuses)
		if from == to {
			return nil
		}

		if err := tx.Model(&expenseDatamodel.ExpenseReport{}).
			Where("id = ?", reportID).
			Update("status", to.String()).Error; err != nil {
			return fmt.Errorf("store status of report %d: %w", reportID, err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func loadReport(tx *gorm.DB, id int64, lock bool) (*expense.Report, error) {
	var row expenseDatamodel.ExpenseReport
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseReportNotFound
		}
		return nil, fmt.Errorf("load expense report %d: %w", id, err)
	}
	return expense.ReportFromDataModel(&row), nil
}

func loadLine(tx *gorm.DB, id int64, lock bool) (*expense.Line, error) {
	var row expenseDatamodel.ExpenseLine
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseLineNotFound
		}
		return nil, fmt.Errorf("load expense line %d: %w", id, err)
	}
	return expense.LineFromDataModel(&row), nil
}

func loadLines(tx *gorm.DB, reportID int64) ([]*expense.Line, error) {
	var rows []*expenseDatamodel.ExpenseLine
	if err := tx.Where("report_id = ?", reportID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load lines of report %d: %w", reportID, err)
	}
	return expense.LinesFromDataModel(rows), nil
}

// updateLine writes l only while the stored status still equals expected.
func updateLine(tx *gorm.DB, expected ledger.Status, l *expense.Line) error {
	res := tx.Model(&expenseDatamodel.ExpenseLine{}).
		Where("id = ? AND status = ?", l.ID, expected.String()).
		Updates(map[string]interface{}{
			"status":           l.Status.String(),
			"rejection_reason": l.RejectionReason,
			"approved_at":      l.ApprovedAt,
			"rejected_at":      l.RejectedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update expense line %d: %w", l.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.NewStaleTransitionError(expected.String())
	}
	return nil
}
