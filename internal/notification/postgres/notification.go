package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/workforce-portal/internal"
	notificationDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/notification"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.Repository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification.ToDataModel(n)).Error; err != nil {
		return fmt.Errorf("create notification for user %d: %w", n.RecipientID, err)
	}
	return nil
}

func (r *NotificationRepository) MarkEmailSent(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Update("email_sent", true).Error
	if err != nil {
		return fmt.Errorf("flag notification %s as emailed: %w", id, err)
	}
	return nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID int64, unreadOnly bool, limit, offset int) ([]*notification.Notification, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}

	var rows []*notificationDatamodel.Notification
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notifications of user %d: %w", recipientID, err)
	}

	result := make([]*notification.Notification, len(rows))
	for i, row := range rows {
		result[i] = notification.FromDataModel(row)
	}
	return result, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count unread notifications of user %d: %w", recipientID, err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID int64, id string) error {
	res := r.db.WithContext(ctx).
		Model(&notificationDatamodel.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification %s as read: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, recipientID int64, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&notificationDatamodel.Notification{})
	if res.Error != nil {
		return fmt.Errorf("delete notification %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrNotificationNotFound
	}
	return nil
}
