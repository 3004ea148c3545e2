package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/workforce-portal/internal/audit"
	auditDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/audit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	row := audit.ToDataModel(e)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("insert transition audit: %w", err)
	}
	e.ID = row.ID
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*audit.Entry, error) {
	var rows []*auditDatamodel.TransitionAudit
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list audit entries of %s %d: %w", entityType, entityID, err)
	}

	entries := make([]*audit.Entry, len(rows))
	for i, row := range rows {
		entries[i] = audit.FromDataModel(row)
	}
	return entries, nil
}
