// audit/query.go
package audit

import (
	"context"
)

// List returns one page of filtered entries for the organization, ordered by
// sequence number descending (most recent first).
func (s *service) List(ctx context.Context, organizationID string, filter Filter) (*Page, error) {
	filter.Page, filter.Limit = normalizePagination(filter.Page, filter.Limit)

	entries, total, err := s.repo.List(ctx, organizationID, filter)
	if err != nil {
		return nil, err
	}
	return buildPage(entries, filter.Page, filter.Limit, total), nil
}

// Get looks up a single entry; absent entries and entries belonging to other
// organizations are indistinguishable to the caller.
func (s *service) Get(ctx context.Context, organizationID, id string) (*AuditLogEntry, error) {
	return s.repo.GetByID(ctx, organizationID, id)
}

// EntityHistory returns the full audit trail of one logical record,
// paginated like List.
func (s *service) EntityHistory(ctx context.Context, organizationID, entityType, entityID string, page, limit int) (*Page, error) {
	return s.List(ctx, organizationID, Filter{
		EntityType: entityType,
		EntityID:   entityID,
		Page:       page,
		Limit:      limit,
	})
}

// Stats aggregates the organization's audit activity.
func (s *service) Stats(ctx context.Context, organizationID string) (*Stats, error) {
	return s.repo.Stats(ctx, organizationID)
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func buildPage(entries []AuditLogEntry, page, limit int, total int64) *Page {
	if entries == nil {
		entries = []AuditLogEntry{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Page{
		Data: entries,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
