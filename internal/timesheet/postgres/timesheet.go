package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/workforce-portal/internal"
	timesheetDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/workforce-portal/internal/timesheet"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TimesheetRepository implements the timesheet.Repository interface using GORM
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) timesheet.Repository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) GetByID(ctx context.Context, id int64) (*timesheet.Timesheet, error) {
	var row timesheetDatamodel.Timesheet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, fmt.Errorf("get timesheet %d: %w", id, err)
	}
	return timesheet.FromDataModel(&row), nil
}

func (r *TimesheetRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]*timesheet.Timesheet, error) {
	var rows []*timesheetDatamodel.Timesheet
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("period_end DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list timesheets of owner %d: %w", ownerID, err)
	}
	result := make([]*timesheet.Timesheet, len(rows))
	for i, row := range rows {
		result[i] = timesheet.FromDataModel(row)
	}
	return result, nil
}

func (r *TimesheetRepository) ApplyTransition(ctx context.Context, id int64, fn func(ts *timesheet.Timesheet) error) (*timesheet.Timesheet, *timesheet.Timesheet, error) {
	var before, after *timesheet.Timesheet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row timesheetDatamodel.Timesheet
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrTimesheetNotFound
			}
			return fmt.Errorf("load timesheet %d: %w", id, err)
		}

		before = timesheet.FromDataModel(&row)
		next := *before
		if err := fn(&next); err != nil {
			return err
		}

		res := tx.Model(&timesheetDatamodel.Timesheet{}).
			Where("id = ? AND status = ?", id, before.Status.String()).
			Updates(map[string]interface{}{
				"status":           next.Status.String(),
				"total_hours":      next.TotalHours,
				"submitted_at":     next.SubmittedAt,
				"approved_at":      next.ApprovedAt,
				"rejection_reason": next.RejectionReason,
			})
		if res.Error != nil {
			return fmt.Errorf("update timesheet %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return internal.NewStaleTransitionError(before.Status.String())
		}

		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return fmt.Errorf("reload timesheet %d: %w", id, err)
		}
		after = timesheet.FromDataModel(&row)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}
