// controller/client_controller.go
package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	"github.com/clearledger/vigil/api/model"
	"github.com/clearledger/vigil/api/service"
	"github.com/clearledger/vigil/api/util"
)

type ClientController struct {
	clientService service.IClientService
}

func NewClientController(clientService service.IClientService) *ClientController {
	return &ClientController{
		clientService: clientService,
	}
}

// RegisterRoutes registers the API routes
func (cc *ClientController) RegisterRoutes(r *gin.RouterGroup) {
	clients := r.Group("/clients")
	{
		clients.POST("", cc.CreateClient)
		clients.PUT("/:id", cc.UpdateClient)
		clients.DELETE("/:id", cc.DeleteClient)
		clients.GET("/:id", cc.GetClient)
		clients.GET("", cc.ListClients)
	}
}

// CreateClient endpoint
func (cc *ClientController) CreateClient(c *gin.Context) {
	var client model.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid client data", vigil_errors.ErrInvalidClientData)
		return
	}
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", vigil_errors.ErrUnauthorized)
		return
	}
	client.OrganizationID = organizationID

	createdClient, err := cc.clientService.CreateClient(c, client, util.GetActorIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, vigil_errors.ErrInvalidClientData):
			util.RespondWithError(c, http.StatusBadRequest, "Invalid client data", err)
		case errors.Is(err, vigil_errors.ErrDatabaseOperation):
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create client", err)
		}
		return
	}

	c.JSON(http.StatusCreated, createdClient)
}

// UpdateClient endpoint
func (cc *ClientController) UpdateClient(c *gin.Context) {
	clientID := c.Param("id")
	var client model.Client
	if err := c.ShouldBindJSON(&client); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid client data", err)
		return
	}
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}
	client.ID = clientID
	client.OrganizationID = organizationID

	updatedClient, err := cc.clientService.UpdateClient(c, client, util.GetActorIDFromContext(c))
	if err != nil {
		if errors.Is(err, vigil_errors.ErrClientNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Client not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update client", err)
		}
		return
	}

	c.JSON(http.StatusOK, updatedClient)
}

// DeleteClient endpoint
func (cc *ClientController) DeleteClient(c *gin.Context) {
	clientID := c.Param("id")
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	if err := cc.clientService.DeleteClient(c, organizationID, clientID, util.GetActorIDFromContext(c)); err != nil {
		if errors.Is(err, vigil_errors.ErrClientNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Client not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to delete client", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GetClient endpoint
func (cc *ClientController) GetClient(c *gin.Context) {
	clientID := c.Param("id")
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	client, err := cc.clientService.GetClient(c, organizationID, clientID)
	if err != nil {
		if errors.Is(err, vigil_errors.ErrClientNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Client not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve client", err)
		}
		return
	}

	c.JSON(http.StatusOK, client)
}

// ListClients endpoint
func (cc *ClientController) ListClients(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", vigil_errors.ErrInvalidPagination)
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", vigil_errors.ErrInvalidPagination)
		return
	}

	clients, err := cc.clientService.ListClients(c, organizationID, limit, offset)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	c.JSON(http.StatusOK, clients)
}
