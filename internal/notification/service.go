package notification

import (
	"context"
	"log/slog"
)

// Service is the recipient's inbox.
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

func (s *Service) List(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	items, err := s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
	if err != nil {
		s.logger.Error("failed to list notifications", "error", err, "recipient_id", recipientID)
		return nil, err
	}
	return items, nil
}

func (s *Service) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *Service) MarkRead(ctx context.Context, recipientID int64, id string) error {
	if err := s.repo.MarkRead(ctx, recipientID, id); err != nil {
		return err
	}
	s.logger.Debug("notification marked as read", "notification_id", id, "recipient_id", recipientID)
	return nil
}

func (s *Service) Delete(ctx context.Context, recipientID int64, id string) error {
	if err := s.repo.Delete(ctx, recipientID, id); err != nil {
		return err
	}
	s.logger.Info("notification deleted", "notification_id", id, "recipient_id", recipientID)
	return nil
}
