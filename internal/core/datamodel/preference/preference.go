package preference

import "time"

type NotificationPreference struct {
	UserID            int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	EmailEnabled      bool      `gorm:"column:email_enabled;not null"`
	InAppEnabled      bool      `gorm:"column:in_app_enabled;not null"`
	TimesheetsEnabled bool      `gorm:"column:timesheets_enabled;not null"`
	ExpensesEnabled   bool      `gorm:"column:expenses_enabled;not null"`
	DeadlinesEnabled  bool      `gorm:"column:deadlines_enabled;not null"`
	SystemEnabled     bool      `gorm:"column:system_enabled;not null"`
	Frequency         string    `gorm:"column:frequency;not null"`
	QuietHoursStart   string    `gorm:"column:quiet_hours_start;not null"`
	QuietHoursEnd     string    `gorm:"column:quiet_hours_end;not null"`
	QuietHoursEnabled bool      `gorm:"column:quiet_hours_enabled;not null"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (NotificationPreference) TableName() string {
	return "notification_preferences"
}
