// audit/canonical.go
package audit

import (
	"strconv"
	"strings"
	"time"
)

// canonicalVersion tags the encoding so it can evolve without silently
// invalidating hashes computed under an older layout.
const canonicalVersion = "v1"

const canonicalNull = "null"

// canonicalTimeFormat is fixed independently of how the store round-trips
// time values; the formatted string is what gets hashed.
const canonicalTimeFormat = time.RFC3339Nano

// Canonical produces the deterministic byte encoding of an entry's content
// fields. Field order is explicit and versioned; dataHash, previousSignature
// and signature are excluded. Payload fields enter as their exact stored
// serialized strings, never re-parsed and re-serialized, so the encoding is
// stable across append time and later verification reads.
func Canonical(e *AuditLogEntry) []byte {
	var b strings.Builder
	b.WriteString(canonicalVersion)
	writeField(&b, "entityType", e.EntityType)
	writeField(&b, "entityId", e.EntityID)
	writeField(&b, "action", string(e.Action))
	writeField(&b, "actorId", e.ActorID)
	writeField(&b, "actorType", string(e.ActorType))
	writeField(&b, "timestamp", e.Timestamp.UTC().Format(canonicalTimeFormat))
	writeField(&b, "oldData", string(e.OldData))
	writeField(&b, "newData", string(e.NewData))
	writeField(&b, "sequenceNumber", strconv.FormatInt(e.SequenceNumber, 10))
	writeField(&b, "metadata", string(e.Metadata))
	return []byte(b.String())
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteByte('|')
	b.WriteString(name)
	b.WriteByte('=')
	if value == "" {
		b.WriteString(canonicalNull)
		return
	}
	b.WriteString(value)
}
