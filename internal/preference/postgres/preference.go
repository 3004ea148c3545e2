package postgres

import (
	"context"
	"errors"
	"fmt"

	preferenceDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/preference"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) preference.Repository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) Get(ctx context.Context, userID int64) (*preference.Preferences, error) {
	var row preferenceDatamodel.NotificationPreference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, preference.ErrNoPreferences
		}
		return nil, fmt.Errorf("load preferences of user %d: %w", userID, err)
	}
	return preference.FromDataModel(&row), nil
}

func (r *PreferenceRepository) Upsert(ctx context.Context, p *preference.Preferences) error {
	row := preference.ToDataModel(p)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("store preferences of user %d: %w", p.UserID, err)
	}
	return nil
}
