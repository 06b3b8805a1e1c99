// audit/model.go
package audit

import (
	"encoding/json"
	"time"
)

// Action is the kind of mutation or activity an entry records.
type Action string

const (
	ActionCreate   Action = "CREATE"
	ActionUpdate   Action = "UPDATE"
	ActionDelete   Action = "DELETE"
	ActionRead     Action = "READ"
	ActionExport   Action = "EXPORT"
	ActionVerify   Action = "VERIFY"
	ActionLogin    Action = "LOGIN"
	ActionLogout   Action = "LOGOUT"
	ActionSubmit   Action = "SUBMIT"
	ActionGenerate Action = "GENERATE"
)

// ActorType identifies what kind of principal performed the action.
type ActorType string

const (
	ActorUser           ActorType = "USER"
	ActorSystem         ActorType = "SYSTEM"
	ActorAPI            ActorType = "API"
	ActorServiceBinding ActorType = "SERVICE_BINDING"
)

// Well-known entity types. EntityType is an open string so producing domains
// can audit records this package has never heard of.
const (
	EntityClient      = "CLIENT"
	EntityTransaction = "TRANSACTION"
	EntityAlert       = "ALERT"
	EntityNotice      = "NOTICE"
	EntityAuditLog    = "AUDIT_LOG"
)

// RawJSON holds the exact serialized payload string used at hashing time.
// The raw string is authoritative for verification; the JSON view is
// best-effort and degrades to null when the stored text does not parse.
type RawJSON string

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if r == "" || !json.Valid([]byte(r)) {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// Parsed returns the structured view of the payload, or nil.
func (r RawJSON) Parsed() json.RawMessage {
	if r == "" || !json.Valid([]byte(r)) {
		return nil
	}
	return json.RawMessage(r)
}

// AuditLogEntry is one immutable link of an organization's audit chain.
type AuditLogEntry struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	OrganizationID    string    `gorm:"size:64;not null;uniqueIndex:idx_audit_org_seq,priority:1;index:idx_audit_org_ts" json:"organizationId"`
	EntityType        string    `gorm:"size:64;not null;index" json:"entityType"`
	EntityID          string    `gorm:"size:128;not null;index" json:"entityId"`
	Action            Action    `gorm:"size:16;not null" json:"action"`
	ActorID           string    `gorm:"size:128" json:"actorId,omitempty"`
	ActorType         ActorType `gorm:"size:32;not null" json:"actorType"`
	IPAddress         string    `gorm:"size:45" json:"ipAddress,omitempty"`
	UserAgent         string    `gorm:"size:255" json:"userAgent,omitempty"`
	Timestamp         time.Time `gorm:"not null;index:idx_audit_org_ts" json:"timestamp"`
	OldData           RawJSON   `gorm:"type:text" json:"oldData"`
	NewData           RawJSON   `gorm:"type:text" json:"newData"`
	Metadata          RawJSON   `gorm:"type:text" json:"metadata"`
	SequenceNumber    int64     `gorm:"not null;uniqueIndex:idx_audit_org_seq,priority:2" json:"sequenceNumber"`
	DataHash          string    `gorm:"size:64;not null" json:"dataHash"`
	PreviousSignature *string   `gorm:"size:64" json:"previousSignature"`
	Signature         string    `gorm:"size:64;not null" json:"signature"`
}

// TableName specifies the table name for AuditLogEntry
func (AuditLogEntry) TableName() string {
	return "audit_log_entries"
}

// Event is an append request produced by a domain through the emission facade.
// OldData/NewData/Metadata are serialized exactly once, at append time.
type Event struct {
	OrganizationID string
	EntityType     string
	EntityID       string
	Action         Action
	ActorID        string
	ActorType      ActorType
	IPAddress      string
	UserAgent      string
	OldData        interface{}
	NewData        interface{}
	Metadata       interface{}
}

// Filter narrows a list query. Zero values mean "no constraint".
type Filter struct {
	EntityType string
	EntityID   string
	Action     Action
	ActorID    string
	ActorType  ActorType
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Pagination describes the position of a page inside the full result set.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Page is one page of entries, most recent first.
type Page struct {
	Data       []AuditLogEntry `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// Verification failure codes. These are results, not errors: a broken chain
// is an expected outcome of verification.
const (
	FailureDataHashMismatch  = "DATA_HASH_MISMATCH"
	FailureChainBreak        = "CHAIN_BREAK"
	FailureSignatureMismatch = "SIGNATURE_MISMATCH"
)

const (
	DefaultVerifyLimit = 1000
	MaxVerifyLimit     = 10000
)

// VerifyRequest bounds a verification run.
type VerifyRequest struct {
	StartSequence *int64 `json:"startSequence"`
	EndSequence   *int64 `json:"endSequence"`
	Limit         int    `json:"limit"`
}

// InvalidEntry pinpoints the first entry that failed verification.
type InvalidEntry struct {
	ID             string `json:"id"`
	SequenceNumber int64  `json:"sequenceNumber"`
	Error          string `json:"error"`
}

// VerificationResult is the outcome of a chain walk.
type VerificationResult struct {
	Valid             bool          `json:"valid"`
	EntriesVerified   int           `json:"entriesVerified"`
	FirstInvalidEntry *InvalidEntry `json:"firstInvalidEntry,omitempty"`
}

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	DefaultExportLimit = 10000
	MaxExportLimit     = 50000
)

// ExportRequest selects and formats entries for compliance handoff.
type ExportRequest struct {
	Format     string     `json:"format"`
	EntityType string     `json:"entityType"`
	StartDate  *time.Time `json:"-"`
	EndDate    *time.Time `json:"-"`
	Limit      int        `json:"limit"`
}

// ExportResult carries the rendered entries. CSV output is kept out of the
// JSON body; controllers stream it with the appropriate content type.
type ExportResult struct {
	Format       string          `json:"format"`
	Data         []AuditLogEntry `json:"data,omitempty"`
	CSV          string          `json:"-"`
	ExportedAt   time.Time       `json:"exportedAt"`
	TotalRecords int64           `json:"totalRecords"`
}

// Stats aggregates an organization's audit activity.
type Stats struct {
	TotalEntries int64            `json:"totalEntries"`
	FirstEntryAt *time.Time       `json:"firstEntryAt,omitempty"`
	LastEntryAt  *time.Time       `json:"lastEntryAt,omitempty"`
	ByAction     map[string]int64 `json:"byAction"`
	ByEntityType map[string]int64 `json:"byEntityType"`
	ByActorType  map[string]int64 `json:"byActorType"`
}
