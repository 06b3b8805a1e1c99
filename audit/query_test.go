package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vigil_errors "github.com/clearledger/vigil/api/errors"
)

func seedEntries(t *testing.T, svc Service, organizationID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := svc.Append(context.Background(), Event{
			OrganizationID: organizationID,
			EntityType:     EntityClient,
			EntityID:       fmt.Sprintf("client-%d", i),
			Action:         ActionCreate,
			ActorID:        "analyst-7",
			ActorType:      ActorUser,
		})
		require.NoError(t, err)
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestService()
	seedEntries(t, svc, "org-1", 45)

	page, err := svc.List(context.Background(), "org-1", Filter{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, page.Data, 20)
	assert.Equal(t, int64(45), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, int64(45), page.Data[0].SequenceNumber, "most recent entry first")
	assert.Equal(t, int64(26), page.Data[19].SequenceNumber)

	lastPage, err := svc.List(context.Background(), "org-1", Filter{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, lastPage.Data, 5)
	assert.Equal(t, int64(5), lastPage.Data[0].SequenceNumber)

	beyond, err := svc.List(context.Background(), "org-1", Filter{Page: 9, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, beyond.Data)
	assert.Empty(t, beyond.Data)
	assert.Equal(t, int64(45), beyond.Pagination.Total)
}

func TestListEmptyOrganization(t *testing.T) {
	svc, _ := newTestService()

	page, err := svc.List(context.Background(), "org-empty", Filter{})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(0), page.Pagination.Total)
	assert.Equal(t, 0, page.Pagination.TotalPages)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, DefaultPageLimit, page.Pagination.Limit)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityClient, EntityID: "client-1",
		Action: ActionCreate, ActorID: "analyst-7", ActorType: ActorUser,
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityClient, EntityID: "client-1",
		Action: ActionUpdate, ActorID: "analyst-9", ActorType: ActorUser,
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityAlert, EntityID: "alert-1",
		Action: ActionCreate, ActorType: ActorSystem,
	})
	require.NoError(t, err)

	byType, err := svc.List(ctx, "org-1", Filter{EntityType: EntityAlert})
	require.NoError(t, err)
	assert.Len(t, byType.Data, 1)
	assert.Equal(t, EntityAlert, byType.Data[0].EntityType)

	byAction, err := svc.List(ctx, "org-1", Filter{Action: ActionUpdate})
	require.NoError(t, err)
	assert.Len(t, byAction.Data, 1)

	byActor, err := svc.List(ctx, "org-1", Filter{ActorID: "analyst-7"})
	require.NoError(t, err)
	assert.Len(t, byActor.Data, 1)
	assert.Equal(t, "analyst-7", byActor.Data[0].ActorID)

	byActorType, err := svc.List(ctx, "org-1", Filter{ActorType: ActorSystem})
	require.NoError(t, err)
	assert.Len(t, byActorType.Data, 1)
}

func TestEntityHistory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for _, entityID := range []string{"client-1", "client-2", "client-1"} {
		_, err := svc.Append(ctx, Event{
			OrganizationID: "org-1",
			EntityType:     EntityClient,
			EntityID:       entityID,
			Action:         ActionUpdate,
			ActorType:      ActorUser,
		})
		require.NoError(t, err)
	}

	history, err := svc.EntityHistory(ctx, "org-1", EntityClient, "client-1", 1, 20)
	require.NoError(t, err)
	assert.Len(t, history.Data, 2)
	assert.Equal(t, int64(3), history.Data[0].SequenceNumber)
	assert.Equal(t, int64(1), history.Data[1].SequenceNumber)
	for _, entry := range history.Data {
		assert.Equal(t, "client-1", entry.EntityID)
	}
}

func TestGet(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Append(ctx, Event{
		OrganizationID: "org-1",
		EntityType:     EntityClient,
		EntityID:       "client-1",
		Action:         ActionCreate,
	})
	require.NoError(t, err)

	found, err := svc.Get(ctx, "org-1", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Signature, found.Signature)

	_, err = svc.Get(ctx, "org-1", "no-such-id")
	assert.ErrorIs(t, err, vigil_errors.ErrAuditLogNotFound)

	// Another organization cannot see the entry, and cannot tell whether it
	// exists at all.
	_, err = svc.Get(ctx, "org-b", created.ID)
	assert.ErrorIs(t, err, vigil_errors.ErrAuditLogNotFound)
}

func TestStatsAggregation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityClient, EntityID: "client-1",
		Action: ActionCreate, ActorType: ActorUser,
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityClient, EntityID: "client-1",
		Action: ActionUpdate, ActorType: ActorUser,
	})
	require.NoError(t, err)
	_, err = svc.Append(ctx, Event{
		OrganizationID: "org-1", EntityType: EntityTransaction, EntityID: "txn-1",
		Action: ActionCreate, ActorType: ActorSystem,
	})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalEntries)
	assert.Equal(t, int64(2), stats.ByAction["CREATE"])
	assert.Equal(t, int64(1), stats.ByAction["UPDATE"])
	assert.Equal(t, int64(2), stats.ByEntityType[EntityClient])
	assert.Equal(t, int64(1), stats.ByEntityType[EntityTransaction])
	assert.Equal(t, int64(2), stats.ByActorType["USER"])
	require.NotNil(t, stats.FirstEntryAt)
	require.NotNil(t, stats.LastEntryAt)
	assert.False(t, stats.LastEntryAt.Before(*stats.FirstEntryAt))
}

func TestNormalizePagination(t *testing.T) {
	page, limit := normalizePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageLimit, limit)

	page, limit = normalizePagination(3, 500)
	assert.Equal(t, 3, page)
	assert.Equal(t, MaxPageLimit, limit)
}
