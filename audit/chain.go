// audit/chain.go
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
)

// EventLogged is published after every successful append so best-effort
// consumers (search mirror, notifications) can react without sitting on the
// write path.
const EventLogged = "audit.logged"

// Publisher is the slice of the event bus the chain needs. Keeping it an
// interface here lets the bus live with the rest of the shared utilities
// without pulling them into the chain's dependencies.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{})
}

// Service is the audit trail: tamper-evident appends plus the read-only
// query, verification and export surface. Entries are immutable; there is
// deliberately no update or delete operation.
type Service interface {
	Append(ctx context.Context, event Event) (*AuditLogEntry, error)
	LogCreate(ctx context.Context, event Event) (*AuditLogEntry, error)
	LogUpdate(ctx context.Context, event Event) (*AuditLogEntry, error)
	LogDelete(ctx context.Context, event Event) (*AuditLogEntry, error)
	LogAction(ctx context.Context, action Action, event Event) (*AuditLogEntry, error)
	List(ctx context.Context, organizationID string, filter Filter) (*Page, error)
	Get(ctx context.Context, organizationID, id string) (*AuditLogEntry, error)
	EntityHistory(ctx context.Context, organizationID, entityType, entityID string, page, limit int) (*Page, error)
	Stats(ctx context.Context, organizationID string) (*Stats, error)
	Verify(ctx context.Context, organizationID string, req VerifyRequest) (*VerificationResult, error)
	Export(ctx context.Context, organizationID string, req ExportRequest) (*ExportResult, error)
}

type service struct {
	repo   Repository
	secret []byte
	bus    Publisher

	// locks serializes read-last/compute/insert per organization. Chains of
	// different organizations never contend. The unique (organization_id,
	// sequence_number) index is the cross-process backstop.
	locks sync.Map
}

// NewService creates the audit service. The bus may be nil when no
// best-effort consumers are wired (tests, one-shot tooling).
func NewService(repo Repository, secret string, bus Publisher) Service {
	return &service{
		repo:   repo,
		secret: []byte(secret),
		bus:    bus,
	}
}

var _ Service = &service{}

func (s *service) orgLock(organizationID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(organizationID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Append assigns the next sequence number and chain link for the event's
// organization and persists the new entry. Storage failures propagate; a
// lost audit entry is a compliance gap, never papered over here.
func (s *service) Append(ctx context.Context, event Event) (*AuditLogEntry, error) {
	if event.OrganizationID == "" {
		return nil, vigil_errors.ErrMissingOrganization
	}
	if event.ActorType == "" {
		event.ActorType = ActorSystem
	}

	oldData, err := marshalPayload(event.OldData)
	if err != nil {
		return nil, fmt.Errorf("%w: oldData: %v", vigil_errors.ErrAuditAppendFailed, err)
	}
	newData, err := marshalPayload(event.NewData)
	if err != nil {
		return nil, fmt.Errorf("%w: newData: %v", vigil_errors.ErrAuditAppendFailed, err)
	}
	metadata, err := marshalPayload(event.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %v", vigil_errors.ErrAuditAppendFailed, err)
	}

	lock := s.orgLock(event.OrganizationID)
	lock.Lock()
	defer lock.Unlock()

	last, err := s.repo.Last(ctx, event.OrganizationID)
	if err != nil {
		return nil, err
	}

	entry := &AuditLogEntry{
		ID:             uuid.New().String(),
		OrganizationID: event.OrganizationID,
		EntityType:     event.EntityType,
		EntityID:       event.EntityID,
		Action:         event.Action,
		ActorID:        event.ActorID,
		ActorType:      event.ActorType,
		IPAddress:      event.IPAddress,
		UserAgent:      event.UserAgent,
		Timestamp:      time.Now().UTC(),
		OldData:        oldData,
		NewData:        newData,
		Metadata:       metadata,
		SequenceNumber: 1,
	}
	if last != nil {
		entry.SequenceNumber = last.SequenceNumber + 1
		previous := last.Signature
		entry.PreviousSignature = &previous
	}

	entry.DataHash = ContentHash(Canonical(entry))
	entry.Signature = ChainSignature(s.secret, entry.DataHash, entry.PreviousSignature)

	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}

	logger.Debug("Audit entry appended",
		zap.String("organizationID", entry.OrganizationID),
		zap.String("entityType", entry.EntityType),
		zap.String("action", string(entry.Action)),
		zap.Int64("sequenceNumber", entry.SequenceNumber))

	if s.bus != nil {
		s.bus.Publish(ctx, EventLogged, *entry)
	}
	return entry, nil
}

// marshalPayload serializes a payload exactly once. The resulting string is
// both stored and hashed; pre-serialized values pass through untouched so the
// bytes can never drift between serialization engines.
func marshalPayload(v interface{}) (RawJSON, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case RawJSON:
		return t, nil
	case json.RawMessage:
		return RawJSON(t), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return RawJSON(data), nil
}
