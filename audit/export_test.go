package audit

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vigil_errors "github.com/clearledger/vigil/api/errors"
)

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Export(context.Background(), "org-1", ExportRequest{Format: "xml"})
	assert.ErrorIs(t, err, vigil_errors.ErrInvalidExportFormat)

	_, err = svc.Export(context.Background(), "org-1", ExportRequest{})
	assert.ErrorIs(t, err, vigil_errors.ErrInvalidExportFormat)
}

func TestExportEmptyChainCSV(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	result, err := svc.Export(ctx, "org-1", ExportRequest{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, result.Format)
	assert.Equal(t, int64(0), result.TotalRecords)

	// Header row only
	records, err := csv.NewReader(strings.NewReader(result.CSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, csvHeader, records[0])

	// The export itself became the chain's first entry
	last, err := repo.Last(ctx, "org-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, int64(1), last.SequenceNumber)
	assert.Equal(t, ActionExport, last.Action)
}

func TestExportCSVRows(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	seedEntries(t, svc, "org-1", 3)

	result, err := svc.Export(ctx, "org-1", ExportRequest{Format: FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.TotalRecords)
	assert.Empty(t, result.Data)

	records, err := csv.NewReader(strings.NewReader(result.CSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, csvHeader, records[0])
	// Rows follow list order, most recent first
	assert.Equal(t, "3", records[1][7])
	assert.Equal(t, "1", records[3][7])
	assert.Equal(t, EntityClient, records[1][1])
}

func TestExportJSON(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	seedEntries(t, svc, "org-1", 2)

	result, err := svc.Export(ctx, "org-1", ExportRequest{Format: FormatJSON})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, result.Format)
	assert.Equal(t, int64(2), result.TotalRecords)
	require.Len(t, result.Data, 2)
	assert.Equal(t, int64(2), result.Data[0].SequenceNumber)
	assert.Empty(t, result.CSV)
	assert.False(t, result.ExportedAt.IsZero())

	last, err := repo.Last(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), last.SequenceNumber)
	assert.Equal(t, ActionExport, last.Action)
	assert.Contains(t, string(last.Metadata), `"format":"json"`)
}

func TestExportEntityTypeFilter(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityClient, EntityID: "client-1",
		Action: ActionCreate,
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityAlert, EntityID: "alert-1",
		Action: ActionCreate,
	})
	require.NoError(t, err)

	result, err := svc.Export(ctx, "org-1", ExportRequest{Format: FormatJSON, EntityType: EntityAlert})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalRecords)
	require.Len(t, result.Data, 1)
	assert.Equal(t, EntityAlert, result.Data[0].EntityType)
}
