package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/user"
	"github.com/jmoiron/sqlx"
)

const (
	getUserByIDQuery = `SELECT id, email, name, role, manager_id, is_active, created_at, updated_at FROM users WHERE id = $1`
	getManagerQuery  = `SELECT manager_id FROM users WHERE id = $1`
)

type pgRepo struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &pgRepo{db: db}
}

func (p *pgRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	if err := p.db.GetContext(ctx, &u, getUserByIDQuery, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (p *pgRepo) ManagerOf(ctx context.Context, userID int64) (int64, bool, error) {
	var managerID sql.NullInt64
	if err := p.db.GetContext(ctx, &managerID, getManagerQuery, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, internal.ErrUserNotFound
		}
		return 0, false, fmt.Errorf("get manager of user %d: %w", userID, err)
	}
	if !managerID.Valid {
		return 0, false, nil
	}
	return managerID.Int64, true, nil
}
