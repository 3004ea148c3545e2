package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseReport struct {
	ID          int64     `gorm:"primaryKey"`
	OwnerID     int64     `gorm:"column:owner_id;not null;index"`
	Title       string    `gorm:"column:title;not null"`
	PeriodLabel string    `gorm:"column:period_label"`
	Status      string    `gorm:"column:status;not null;default:draft"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExpenseReport) TableName() string {
	return "expense_reports"
}

type ExpenseLine struct {
	ID              int64           `gorm:"primaryKey"`
	ReportID        int64           `gorm:"column:report_id;not null;index"`
	Description     string          `gorm:"column:description;not null"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	Status          string          `gorm:"column:status;not null;default:draft"`
	RejectionReason string          `gorm:"column:rejection_reason"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at"`
	RejectedAt      *time.Time      `gorm:"column:rejected_at"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ExpenseLine) TableName() string {
	return "expense_lines"
}
