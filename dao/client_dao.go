package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/model"
)

const labelClient = "Client"

type ClientDAO struct {
	Driver neo4j.Driver
}

func NewClientDAO(driver neo4j.Driver) *ClientDAO {
	dao := &ClientDAO{Driver: driver}
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint for Client", zap.Error(err))
	}
	return dao
}

func (dao *ClientDAO) EnsureUniqueConstraint(ctx context.Context) error {
	logger.Info("Ensuring unique constraint on Client ID")
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_client_id IF NOT EXISTS
        FOR (cl:` + labelClient + `) REQUIRE cl.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		return nil, err
	})

	if err != nil {
		logger.Error("Failed to ensure unique constraint on Client ID", zap.Error(err))
		return err
	}

	return nil
}

func (dao *ClientDAO) CreateClient(ctx context.Context, client model.Client) (string, error) {
	start := time.Now()
	logger.Info("Creating new client", zap.String("organizationID", client.OrganizationID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	if client.ID == "" {
		client.ID = uuid.New().String()
	}

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (cl:` + labelClient + ` {id: $id})
        ON CREATE SET cl += $props
        RETURN cl.id as id
        `

		params := map[string]interface{}{
			"id": client.ID,
			"props": map[string]interface{}{
				"organizationId": client.OrganizationID,
				"fullName":       client.FullName,
				"email":          client.Email,
				"country":        client.Country,
				"riskLevel":      client.RiskLevel,
				"status":         client.Status,
				"createdAt":      time.Now().Format(time.RFC3339),
				"updatedAt":      time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, vigil_errors.ErrDatabaseOperation
		}

		if result.Next() {
			return result.Record().Values[0], nil
		}

		return nil, vigil_errors.ErrInternalServer
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to create client",
			zap.Error(err),
			zap.String("organizationID", client.OrganizationID),
			zap.Duration("duration", duration))
		return "", err
	}

	clientID := fmt.Sprintf("%v", result)
	logger.Info("Client created successfully",
		zap.String("clientID", clientID),
		zap.Duration("duration", duration))

	return clientID, nil
}

func (dao *ClientDAO) UpdateClient(ctx context.Context, client model.Client) (*model.Client, error) {
	logger.Info("Updating client", zap.String("clientID", client.ID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	result, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (cl:` + labelClient + ` {id: $id, organizationId: $organizationId})
        SET cl += $props
        RETURN cl
        `

		params := map[string]interface{}{
			"id":             client.ID,
			"organizationId": client.OrganizationID,
			"props": map[string]interface{}{
				"fullName":  client.FullName,
				"email":     client.Email,
				"country":   client.Country,
				"riskLevel": client.RiskLevel,
				"status":    client.Status,
				"updatedAt": time.Now().Format(time.RFC3339),
			},
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, vigil_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return nodeToClient(node), nil
		}

		return nil, vigil_errors.ErrClientNotFound
	})
	if err != nil {
		logger.Error("Failed to update client", zap.Error(err), zap.String("clientID", client.ID))
		return nil, err
	}

	updated := result.(*model.Client)
	return updated, nil
}

func (dao *ClientDAO) DeleteClient(ctx context.Context, organizationID, clientID string) error {
	logger.Info("Deleting client", zap.String("clientID", clientID))
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (cl:` + labelClient + ` {id: $id, organizationId: $organizationId})
        WITH cl, count(cl) as found
        DETACH DELETE cl
        RETURN found
        `

		params := map[string]interface{}{
			"id":             clientID,
			"organizationId": organizationID,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, vigil_errors.ErrDatabaseOperation
		}

		if !result.Next() {
			return nil, vigil_errors.ErrClientNotFound
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to delete client", zap.Error(err), zap.String("clientID", clientID))
		return err
	}

	return nil
}

func (dao *ClientDAO) GetClient(ctx context.Context, organizationID, clientID string) (*model.Client, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (cl:` + labelClient + ` {id: $id, organizationId: $organizationId})
        RETURN cl
        `

		params := map[string]interface{}{
			"id":             clientID,
			"organizationId": organizationID,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, vigil_errors.ErrDatabaseOperation
		}

		if result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			return nodeToClient(node), nil
		}

		return nil, vigil_errors.ErrClientNotFound
	})
	if err != nil {
		return nil, err
	}

	return result.(*model.Client), nil
}

func (dao *ClientDAO) ListClients(ctx context.Context, organizationID string, limit, offset int) ([]*model.Client, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (cl:` + labelClient + ` {organizationId: $organizationId})
        RETURN cl
        ORDER BY cl.createdAt DESC
        SKIP $offset LIMIT $limit
        `

		params := map[string]interface{}{
			"organizationId": organizationID,
			"offset":         offset,
			"limit":          limit,
		}

		result, err := transaction.Run(query, params)
		if err != nil {
			return nil, vigil_errors.ErrDatabaseOperation
		}

		var clients []*model.Client
		for result.Next() {
			node := result.Record().Values[0].(neo4j.Node)
			clients = append(clients, nodeToClient(node))
		}
		return clients, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]*model.Client), nil
}

func nodeToClient(node neo4j.Node) *model.Client {
	props := node.Props
	client := &model.Client{
		ID:             stringProp(props, "id"),
		OrganizationID: stringProp(props, "organizationId"),
		FullName:       stringProp(props, "fullName"),
		Email:          stringProp(props, "email"),
		Country:        stringProp(props, "country"),
		RiskLevel:      stringProp(props, "riskLevel"),
		Status:         stringProp(props, "status"),
	}
	if t, err := time.Parse(time.RFC3339, stringProp(props, "createdAt")); err == nil {
		client.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, stringProp(props, "updatedAt")); err == nil {
		client.UpdatedAt = t
	}
	return client
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}
