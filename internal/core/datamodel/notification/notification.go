package notification

import "time"

type Notification struct {
	ID          string            `gorm:"primaryKey;type:uuid"`
	RecipientID int64             `gorm:"column:recipient_id;not null;index"`
	Kind        string            `gorm:"column:kind;not null"`
	Priority    string            `gorm:"column:priority;not null"`
	EntityType  string            `gorm:"column:entity_type;not null"`
	EntityID    int64             `gorm:"column:entity_id;not null"`
	Read        bool              `gorm:"column:read;not null;default:false"`
	EmailSent   bool              `gorm:"column:email_sent;not null;default:false"`
	Metadata    map[string]string `gorm:"column:metadata;serializer:json"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
