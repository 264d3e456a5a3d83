package repository

import (
	"context"
	"encoding/json"
	"time"

	"hostelcore/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, e *domain.AuditEntry) error {
	var details datatypes.JSON
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = datatypes.JSON(raw)
	}
	m := auditModel{
		ActorID:      e.ActorID,
		Action:       e.Action,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "audit %s on %s %d", e.Action, e.ResourceType, e.ResourceID)
	}
	e.ID = m.ID
	e.CreatedAt = m.CreatedAt
	return nil
}

// ListForResource returns the audit trail of one resource, oldest first.
func (r *AuditRepository) ListForResource(ctx context.Context, resourceType string, resourceID int64) ([]domain.AuditEntry, error) {
	var rows []auditModel
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, translate(err, "audit trail of %s %d", resourceType, resourceID)
	}
	out := make([]domain.AuditEntry, 0, len(rows))
	for _, m := range rows {
		entry := domain.AuditEntry{
			ID:           m.ID,
			ActorID:      m.ActorID,
			Action:       m.Action,
			ResourceType: m.ResourceType,
			ResourceID:   m.ResourceID,
			CreatedAt:    m.CreatedAt,
		}
		if len(m.Details) > 0 {
			if err := json.Unmarshal(m.Details, &entry.Details); err != nil {
				return nil, err
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
