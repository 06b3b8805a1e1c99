// audit/repository.go
package audit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
)

// Repository is the append-only keyed store beneath the chain. Writes go
// through Insert only; there is no update or delete.
type Repository interface {
	Insert(ctx context.Context, entry *AuditLogEntry) error
	Last(ctx context.Context, organizationID string) (*AuditLogEntry, error)
	GetByID(ctx context.Context, organizationID, id string) (*AuditLogEntry, error)
	Range(ctx context.Context, organizationID string, startSeq, endSeq *int64, limit int) ([]AuditLogEntry, error)
	List(ctx context.Context, organizationID string, filter Filter) ([]AuditLogEntry, int64, error)
	Stats(ctx context.Context, organizationID string) (*Stats, error)
}

type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a repository over an initialized gorm handle.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

var _ Repository = &GormRepository{}

// Insert persists a fully computed entry. A unique index on
// (organization_id, sequence_number) rejects any append that raced past the
// engine's per-organization serialization.
func (r *GormRepository) Insert(ctx context.Context, entry *AuditLogEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logger.Error("Audit append lost a sequence race",
				zap.String("organizationID", entry.OrganizationID),
				zap.Int64("sequenceNumber", entry.SequenceNumber))
			return vigil_errors.ErrSequenceConflict
		}
		logger.Error("Failed to insert audit log entry",
			zap.Error(err),
			zap.String("organizationID", entry.OrganizationID))
		return fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	return nil
}

// Last returns the highest-sequence entry for the organization, or nil when
// the chain is empty.
func (r *GormRepository) Last(ctx context.Context, organizationID string) (*AuditLogEntry, error) {
	var entry AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID).
		Order("sequence_number DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	return &entry, nil
}

func (r *GormRepository) GetByID(ctx context.Context, organizationID, id string) (*AuditLogEntry, error) {
	var entry AuditLogEntry
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationID, id).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, vigil_errors.ErrAuditLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	return &entry, nil
}

// Range loads entries ordered by sequence ascending, optionally bounded
// inclusively by startSeq/endSeq, capped at limit.
func (r *GormRepository) Range(ctx context.Context, organizationID string, startSeq, endSeq *int64, limit int) ([]AuditLogEntry, error) {
	query := r.db.WithContext(ctx).
		Where("organization_id = ?", organizationID)
	if startSeq != nil {
		query = query.Where("sequence_number >= ?", *startSeq)
	}
	if endSeq != nil {
		query = query.Where("sequence_number <= ?", *endSeq)
	}

	var entries []AuditLogEntry
	err := query.Order("sequence_number ASC").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	return entries, nil
}

// List returns one page of filtered entries, most recent first, along with
// the total match count.
func (r *GormRepository) List(ctx context.Context, organizationID string, filter Filter) ([]AuditLogEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&AuditLogEntry{}).
		Where("organization_id = ?", organizationID)
	query = applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}

	var entries []AuditLogEntry
	err := query.Order("sequence_number DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	return entries, total, nil
}

func applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.ActorType != "" {
		query = query.Where("actor_type = ?", filter.ActorType)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}
	return query
}

type countRow struct {
	Key   string
	Count int64
}

// Stats aggregates the organization's entries by action, entity type and
// actor type, plus the first/last entry timestamps.
func (r *GormRepository) Stats(ctx context.Context, organizationID string) (*Stats, error) {
	stats := &Stats{
		ByAction:     map[string]int64{},
		ByEntityType: map[string]int64{},
		ByActorType:  map[string]int64{},
	}

	scoped := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&AuditLogEntry{}).
			Where("organization_id = ?", organizationID)
	}

	if err := scoped().Count(&stats.TotalEntries).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	if stats.TotalEntries == 0 {
		return stats, nil
	}

	var first, last AuditLogEntry
	if err := scoped().Order("sequence_number ASC").First(&first).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	if err := scoped().Order("sequence_number DESC").First(&last).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
	}
	stats.FirstEntryAt = &first.Timestamp
	stats.LastEntryAt = &last.Timestamp

	groups := []struct {
		column string
		into   map[string]int64
	}{
		{"action", stats.ByAction},
		{"entity_type", stats.ByEntityType},
		{"actor_type", stats.ByActorType},
	}
	for _, g := range groups {
		var rows []countRow
		err := scoped().
			Select(g.column + " AS key, COUNT(*) AS count").
			Group(g.column).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("%w: %v", vigil_errors.ErrDatabaseOperation, err)
		}
		for _, row := range rows {
			g.into[row.Key] = row.Count
		}
	}

	return stats, nil
}
