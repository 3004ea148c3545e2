package user

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	Role      string    `gorm:"column:role;not null;default:employee"`
	ManagerID *int64    `gorm:"column:manager_id"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
