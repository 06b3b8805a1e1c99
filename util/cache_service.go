// util/cache_service.go

package util

import (
	"context"

	"github.com/clearledger/vigil/api/audit"
	"github.com/clearledger/vigil/api/db"
	"github.com/clearledger/vigil/api/model"
)

type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetClient(ctx context.Context, clientID string) (*model.Client, error) {
	return db.GetCachedClient(ctx, clientID)
}

func (c *CacheService) SetClient(ctx context.Context, client model.Client) error {
	return db.CacheClient(ctx, &client)
}

func (c *CacheService) DeleteClient(ctx context.Context, clientID string) error {
	return db.DeleteCachedClient(ctx, clientID)
}

func (c *CacheService) GetAuditStats(ctx context.Context, organizationID string) (*audit.Stats, error) {
	return db.GetCachedAuditStats(ctx, organizationID)
}

func (c *CacheService) SetAuditStats(ctx context.Context, organizationID string, stats *audit.Stats) error {
	return db.CacheAuditStats(ctx, organizationID, stats)
}

func (c *CacheService) DeleteAuditStats(ctx context.Context, organizationID string) error {
	return db.DeleteCachedAuditStats(ctx, organizationID)
}
