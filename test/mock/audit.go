// test/mock/audit.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clearledger/vigil/api/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

var _ audit.Service = &MockAuditService{}

func (m *MockAuditService) Append(ctx context.Context, event audit.Event) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) LogCreate(ctx context.Context, event audit.Event) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) LogUpdate(ctx context.Context, event audit.Event) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) LogDelete(ctx context.Context, event audit.Event) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, event)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) LogAction(ctx context.Context, action audit.Action, event audit.Event) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, action, event)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) List(ctx context.Context, organizationID string, filter audit.Filter) (*audit.Page, error) {
	args := m.Called(ctx, organizationID, filter)
	if page, ok := args.Get(0).(*audit.Page); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) Get(ctx context.Context, organizationID, id string) (*audit.AuditLogEntry, error) {
	args := m.Called(ctx, organizationID, id)
	if entry, ok := args.Get(0).(*audit.AuditLogEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) EntityHistory(ctx context.Context, organizationID, entityType, entityID string, page, limit int) (*audit.Page, error) {
	args := m.Called(ctx, organizationID, entityType, entityID, page, limit)
	if result, ok := args.Get(0).(*audit.Page); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) Stats(ctx context.Context, organizationID string) (*audit.Stats, error) {
	args := m.Called(ctx, organizationID)
	if stats, ok := args.Get(0).(*audit.Stats); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) Verify(ctx context.Context, organizationID string, req audit.VerifyRequest) (*audit.VerificationResult, error) {
	args := m.Called(ctx, organizationID, req)
	if result, ok := args.Get(0).(*audit.VerificationResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuditService) Export(ctx context.Context, organizationID string, req audit.ExportRequest) (*audit.ExportResult, error) {
	args := m.Called(ctx, organizationID, req)
	if result, ok := args.Get(0).(*audit.ExportResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}
