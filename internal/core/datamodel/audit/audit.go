package audit

import "time"

type TransitionAudit struct {
	ID         int64     `gorm:"primaryKey"`
	EventID    string    `gorm:"column:event_id;not null;uniqueIndex"`
	EntityType string    `gorm:"column:entity_type;not null"`
	EntityID   int64     `gorm:"column:entity_id;not null;index"`
	Action     string    `gorm:"column:action;not null"`
	ActorID    int64     `gorm:"column:actor_id;not null"`
	FromStatus string    `gorm:"column:from_status;not null"`
	ToStatus   string    `gorm:"column:to_status;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TransitionAudit) TableName() string {
	return "transition_audits"
}
