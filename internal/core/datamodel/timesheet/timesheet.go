package timesheet

import (
	"time"

	"github.com/shopspring/decimal"
)

type Timesheet struct {
	ID              int64           `gorm:"primaryKey"`
	OwnerID         int64           `gorm:"column:owner_id;not null;index"`
	PeriodEnd       time.Time       `gorm:"column:period_end;type:date;not null"`
	TotalHours      decimal.Decimal `gorm:"column:total_hours;type:numeric(6,2);not null"`
	Status          string          `gorm:"column:status;not null;default:draft"`
	SubmittedAt     *time.Time      `gorm:"column:submitted_at"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at"`
	RejectionReason string          `gorm:"column:rejection_reason"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}
