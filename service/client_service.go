// service/client_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/audit"
	"github.com/clearledger/vigil/api/dao"
	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/model"
	"github.com/clearledger/vigil/api/util"
)

// IClientService defines the interface for client operations
type IClientService interface {
	CreateClient(ctx context.Context, client model.Client, actorID string) (*model.Client, error)
	UpdateClient(ctx context.Context, client model.Client, actorID string) (*model.Client, error)
	DeleteClient(ctx context.Context, organizationID, clientID, actorID string) error
	GetClient(ctx context.Context, organizationID, clientID string) (*model.Client, error)
	ListClients(ctx context.Context, organizationID string, limit, offset int) ([]*model.Client, error)
}

// ClientService handles business logic for client operations. Every mutation
// goes through the audit emission facade; a client change that cannot be
// audited does not happen.
type ClientService struct {
	clientDAO       *dao.ClientDAO
	validationUtil  *util.ValidationUtil
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
	auditService    audit.Service
}

var _ IClientService = &ClientService{}

// NewClientService creates a new instance of ClientService
func NewClientService(clientDAO *dao.ClientDAO, validationUtil *util.ValidationUtil, cacheService *util.CacheService, notificationSvc *util.NotificationService, eventBus *util.EventBus, auditService audit.Service) *ClientService {
	service := &ClientService{
		clientDAO:       clientDAO,
		validationUtil:  validationUtil,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		auditService:    auditService,
	}

	// Set up event subscriptions
	eventBus.Subscribe("client.created", service.handleClientCreated)
	eventBus.Subscribe("client.updated", service.handleClientUpdated)
	eventBus.Subscribe("client.deleted", service.handleClientDeleted)

	return service
}

func (s *ClientService) handleClientCreated(ctx context.Context, event util.Event) error {
	client := event.Payload.(model.Client)
	logger.Info("Client created event received", zap.String("clientID", client.ID))

	if err := s.notificationSvc.NotifyClientChange(ctx, "created", client); err != nil {
		logger.Warn("Failed to send client creation notification", zap.Error(err), zap.String("clientID", client.ID))
	}
	return nil
}

func (s *ClientService) handleClientUpdated(ctx context.Context, event util.Event) error {
	payload := event.Payload.(map[string]model.Client)
	newClient := payload["new"]

	if err := s.notificationSvc.NotifyClientChange(ctx, "updated", newClient); err != nil {
		logger.Warn("Failed to send client update notification", zap.Error(err), zap.String("clientID", newClient.ID))
	}

	// Stats dashboards count by entity type; a mutation makes them stale.
	if err := s.cacheService.DeleteAuditStats(ctx, newClient.OrganizationID); err != nil {
		logger.Warn("Failed to invalidate audit stats cache", zap.Error(err))
	}
	return nil
}

func (s *ClientService) handleClientDeleted(ctx context.Context, event util.Event) error {
	clientID := event.Payload.(string)
	logger.Info("Client deleted event received", zap.String("clientID", clientID))

	if err := s.notificationSvc.NotifyClientChange(ctx, "deleted", model.Client{ID: clientID}); err != nil {
		logger.Warn("Failed to send client deletion notification", zap.Error(err), zap.String("clientID", clientID))
	}
	return nil
}

// CreateClient handles onboarding of a new client
func (s *ClientService) CreateClient(ctx context.Context, client model.Client, actorID string) (*model.Client, error) {
	if err := s.validationUtil.ValidateClient(client); err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrInvalidClientData, err)
	}
	if client.OrganizationID == "" {
		return nil, vigil_errors.ErrMissingOrganization
	}
	if client.RiskLevel == "" {
		client.RiskLevel = "LOW"
	}
	if client.Status == "" {
		client.Status = "ACTIVE"
	}

	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	clientID, err := s.clientDAO.CreateClient(ctx, client)
	if err != nil {
		logger.Error("Error creating client", zap.Error(err), zap.String("actorID", actorID))
		return nil, err
	}
	client.ID = clientID

	// Audit before anything best-effort: losing this entry is a compliance
	// gap, so an append failure fails the whole operation.
	_, err = s.auditService.LogCreate(ctx, audit.Event{
		OrganizationID: client.OrganizationID,
		EntityType:     audit.EntityClient,
		EntityID:       clientID,
		ActorID:        actorID,
		ActorType:      audit.ActorUser,
		NewData:        client,
	})
	if err != nil {
		logger.Error("Failed to audit client creation", zap.Error(err), zap.String("clientID", clientID))
		return nil, err
	}

	if err := s.cacheService.SetClient(ctx, client); err != nil {
		logger.Warn("Failed to cache client", zap.Error(err), zap.String("clientID", clientID))
	}

	s.eventBus.Publish(ctx, "client.created", client)

	logger.Info("Client created successfully", zap.String("clientID", clientID), zap.String("actorID", actorID))
	return &client, nil
}

// UpdateClient handles updates to an existing client
func (s *ClientService) UpdateClient(ctx context.Context, client model.Client, actorID string) (*model.Client, error) {
	if err := s.validationUtil.ValidateClient(client); err != nil {
		return nil, fmt.Errorf("%w: %v", vigil_errors.ErrInvalidClientData, err)
	}

	oldClient, err := s.clientDAO.GetClient(ctx, client.OrganizationID, client.ID)
	if err != nil {
		logger.Error("Error retrieving existing client", zap.Error(err), zap.String("clientID", client.ID))
		return nil, err
	}

	client.UpdatedAt = time.Now()

	updatedClient, err := s.clientDAO.UpdateClient(ctx, client)
	if err != nil {
		logger.Error("Error updating client", zap.Error(err), zap.String("clientID", client.ID), zap.String("actorID", actorID))
		return nil, err
	}

	_, err = s.auditService.LogUpdate(ctx, audit.Event{
		OrganizationID: client.OrganizationID,
		EntityType:     audit.EntityClient,
		EntityID:       client.ID,
		ActorID:        actorID,
		ActorType:      audit.ActorUser,
		OldData:        oldClient,
		NewData:        updatedClient,
	})
	if err != nil {
		logger.Error("Failed to audit client update", zap.Error(err), zap.String("clientID", client.ID))
		return nil, err
	}

	if err := s.cacheService.SetClient(ctx, *updatedClient); err != nil {
		logger.Warn("Failed to update client in cache", zap.Error(err), zap.String("clientID", client.ID))
	}

	s.eventBus.Publish(ctx, "client.updated", map[string]model.Client{
		"old": *oldClient,
		"new": *updatedClient,
	})

	logger.Info("Client updated successfully", zap.String("clientID", client.ID), zap.String("actorID", actorID))
	return updatedClient, nil
}

// DeleteClient handles offboarding of a client
func (s *ClientService) DeleteClient(ctx context.Context, organizationID, clientID, actorID string) error {
	oldClient, err := s.clientDAO.GetClient(ctx, organizationID, clientID)
	if err != nil {
		return err
	}

	if err := s.clientDAO.DeleteClient(ctx, organizationID, clientID); err != nil {
		logger.Error("Error deleting client", zap.Error(err), zap.String("clientID", clientID), zap.String("actorID", actorID))
		return err
	}

	_, err = s.auditService.LogDelete(ctx, audit.Event{
		OrganizationID: organizationID,
		EntityType:     audit.EntityClient,
		EntityID:       clientID,
		ActorID:        actorID,
		ActorType:      audit.ActorUser,
		OldData:        oldClient,
	})
	if err != nil {
		logger.Error("Failed to audit client deletion", zap.Error(err), zap.String("clientID", clientID))
		return err
	}

	if err := s.cacheService.DeleteClient(ctx, clientID); err != nil {
		logger.Warn("Failed to delete client from cache", zap.Error(err), zap.String("clientID", clientID))
	}

	s.eventBus.Publish(ctx, "client.deleted", clientID)

	logger.Info("Client deleted successfully", zap.String("clientID", clientID), zap.String("actorID", actorID))
	return nil
}

// GetClient retrieves a client by its ID
func (s *ClientService) GetClient(ctx context.Context, organizationID, clientID string) (*model.Client, error) {
	// Try to get from cache first
	cachedClient, err := s.cacheService.GetClient(ctx, clientID)
	if err == nil && cachedClient != nil && cachedClient.OrganizationID == organizationID {
		return cachedClient, nil
	}

	client, err := s.clientDAO.GetClient(ctx, organizationID, clientID)
	if err != nil {
		if errors.Is(err, vigil_errors.ErrClientNotFound) {
			return nil, vigil_errors.ErrClientNotFound
		}
		logger.Error("Error retrieving client", zap.Error(err), zap.String("clientID", clientID))
		return nil, vigil_errors.ErrInternalServer
	}

	if err := s.cacheService.SetClient(ctx, *client); err != nil {
		logger.Warn("Failed to cache client", zap.Error(err), zap.String("clientID", clientID))
	}

	return client, nil
}

// ListClients retrieves the organization's clients
func (s *ClientService) ListClients(ctx context.Context, organizationID string, limit, offset int) ([]*model.Client, error) {
	clients, err := s.clientDAO.ListClients(ctx, organizationID, limit, offset)
	if err != nil {
		logger.Error("Error listing clients", zap.Error(err), zap.String("organizationID", organizationID))
		return nil, err
	}
	return clients, nil
}
