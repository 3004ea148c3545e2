package expense

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
)

// Service handles read access to expense reports. Status changes go through
// the approval service.
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

// GetReport returns a report with its lines to its owner or to an approver.
func (s *Service) GetReport(ctx context.Context, actor auth.Actor, id int64) (*Report, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if report.OwnerID != actor.ID && !actor.CanApprove() {
		s.logger.Warn("unauthorized access to expense report", "report_id", id, "actor_id", actor.ID, "owner_id", report.OwnerID)
		return nil, internal.ErrExpenseReportNotFound
	}

	return report, nil
}

func (s *Service) ListReports(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Report, error) {
	reports, err := s.repo.ListReportsByOwner(ctx, actor.ID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list expense reports", "error", err, "owner_id", actor.ID)
		return nil, err
	}
	return reports, nil
}
