package timesheet

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
)

// Service handles read access to timesheets. Status changes go through the
// approval service.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetTimesheet hides timesheets of other employees from non-approvers.
func (s *Service) GetTimesheet(ctx context.Context, actor auth.Actor, id int64) (*Timesheet, error) {
	ts, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ts.OwnerID != actor.ID && !actor.CanApprove() {
		s.logger.Warn("unauthorized access to timesheet", "timesheet_id", id, "actor_id", actor.ID, "owner_id", ts.OwnerID)
		return nil, internal.ErrTimesheetNotFound
	}
	return ts, nil
}

func (s *Service) ListTimesheets(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Timesheet, error) {
	list, err := s.repo.ListByOwner(ctx, actor.ID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list timesheets", "error", err, "owner_id", actor.ID)
		return nil, err
	}
	return list, nil
}
