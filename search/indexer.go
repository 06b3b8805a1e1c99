// search/indexer.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/audit"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/util"
)

const auditIndex = "audit-logs"

// Indexer mirrors appended audit entries into Elasticsearch for full-text
// compliance search. The mirror is a best-effort side channel fed off the
// event bus: indexing failures are logged and swallowed, and the chain store
// remains the only record that verification trusts.
type Indexer struct {
	esClient *elasticsearch.Client
}

// NewIndexer creates an indexer against the given Elasticsearch URL.
func NewIndexer(esURL string) (*Indexer, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Indexer{esClient: esClient}, nil
}

// Subscribe attaches the indexer to appended-entry events.
func (ix *Indexer) Subscribe(bus *util.EventBus) {
	bus.Subscribe(audit.EventLogged, ix.handleLogged)
}

func (ix *Indexer) handleLogged(ctx context.Context, event util.Event) error {
	entry, ok := event.Payload.(audit.AuditLogEntry)
	if !ok {
		return fmt.Errorf("unexpected payload type %T for %s", event.Payload, audit.EventLogged)
	}
	if err := ix.Index(ctx, entry); err != nil {
		logger.Warn("Failed to mirror audit entry to search index",
			zap.Error(err),
			zap.String("entryID", entry.ID),
			zap.String("organizationID", entry.OrganizationID))
	}
	return nil
}

// Index writes one entry document into the search index.
func (ix *Indexer) Index(ctx context.Context, entry audit.AuditLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      auditIndex,
		DocumentID: entry.ID,
		Body:       strings.NewReader(string(data)),
	}

	res, err := req.Do(ctx, ix.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}
