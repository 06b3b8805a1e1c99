package audit

import (
	"context"
	"os"
	"sort"
	"sync"
	"testing"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
)

func TestMain(m *testing.M) {
	logger.InitLogger("../logging")
	defer logger.Sync()
	os.Exit(m.Run())
}

// memRepository is an in-memory Repository used by the chain tests. It is
// safe for concurrent use, like the real store, and lets tests tamper with
// persisted entries directly.
type memRepository struct {
	mu      sync.Mutex
	entries map[string][]AuditLogEntry
}

func newMemRepository() *memRepository {
	return &memRepository{entries: make(map[string][]AuditLogEntry)}
}

var _ Repository = &memRepository{}

func (r *memRepository) Insert(ctx context.Context, entry *AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries[entry.OrganizationID] {
		if existing.SequenceNumber == entry.SequenceNumber {
			return vigil_errors.ErrSequenceConflict
		}
	}
	r.entries[entry.OrganizationID] = append(r.entries[entry.OrganizationID], *entry)
	return nil
}

func (r *memRepository) Last(ctx context.Context, organizationID string) (*AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[organizationID]
	if len(entries) == 0 {
		return nil, nil
	}
	last := entries[0]
	for _, e := range entries[1:] {
		if e.SequenceNumber > last.SequenceNumber {
			last = e
		}
	}
	return &last, nil
}

func (r *memRepository) GetByID(ctx context.Context, organizationID, id string) (*AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries[organizationID] {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, vigil_errors.ErrAuditLogNotFound
}

func (r *memRepository) Range(ctx context.Context, organizationID string, startSeq, endSeq *int64, limit int) ([]AuditLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []AuditLogEntry
	for _, e := range r.entries[organizationID] {
		if startSeq != nil && e.SequenceNumber < *startSeq {
			continue
		}
		if endSeq != nil && e.SequenceNumber > *endSeq {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepository) List(ctx context.Context, organizationID string, filter Filter) ([]AuditLogEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []AuditLogEntry
	for _, e := range r.entries[organizationID] {
		if filter.EntityType != "" && e.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.ActorType != "" && e.ActorType != filter.ActorType {
			continue
		}
		if filter.StartDate != nil && e.Timestamp.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && e.Timestamp.After(*filter.EndDate) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SequenceNumber > matched[j].SequenceNumber })

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memRepository) Stats(ctx context.Context, organizationID string) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &Stats{
		ByAction:     map[string]int64{},
		ByEntityType: map[string]int64{},
		ByActorType:  map[string]int64{},
	}
	for _, e := range r.entries[organizationID] {
		entry := e
		stats.TotalEntries++
		stats.ByAction[string(e.Action)]++
		stats.ByEntityType[e.EntityType]++
		stats.ByActorType[string(e.ActorType)]++
		if stats.FirstEntryAt == nil || entry.Timestamp.Before(*stats.FirstEntryAt) {
			stats.FirstEntryAt = &entry.Timestamp
		}
		if stats.LastEntryAt == nil || entry.Timestamp.After(*stats.LastEntryAt) {
			stats.LastEntryAt = &entry.Timestamp
		}
	}
	return stats, nil
}

// tamper rewrites a stored entry in place, bypassing the append engine.
func (r *memRepository) tamper(organizationID string, sequenceNumber int64, mutate func(*AuditLogEntry)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[organizationID]
	for i := range entries {
		if entries[i].SequenceNumber == sequenceNumber {
			mutate(&entries[i])
			return
		}
	}
}
