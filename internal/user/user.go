package user

import (
	"context"
	"time"

	userDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/user"
)

type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	ManagerID *int64    `json:"manager_id,omitempty" db:"manager_id"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Repository is the read side of the user directory.
type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	// ManagerOf returns the owner's manager; ok is false when none is assigned.
	ManagerOf(ctx context.Context, userID int64) (managerID int64, ok bool, err error)
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		ManagerID: u.ManagerID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
