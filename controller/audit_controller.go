// controller/audit_controller.go
package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/audit"
	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
	"github.com/clearledger/vigil/api/util"
	helper_util "github.com/clearledger/vigil/api/util/helper"
)

// AuditController exposes the read/append surface of the audit trail. There
// are intentionally no update or delete endpoints: entries are immutable.
type AuditController struct {
	auditService    audit.Service
	cacheService    *util.CacheService
	notificationSvc *util.NotificationService
}

func NewAuditController(auditService audit.Service, cacheService *util.CacheService, notificationSvc *util.NotificationService) *AuditController {
	return &AuditController{
		auditService:    auditService,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
	}
}

// RegisterRoutes registers the API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	auditLogs := r.Group("/audit-logs")
	{
		auditLogs.GET("", ac.ListAuditLogs)
		auditLogs.GET("/stats", ac.GetStats)
		auditLogs.GET("/entity/:entityType/:entityId", ac.GetEntityHistory)
		auditLogs.GET("/:id", ac.GetAuditLog)
		auditLogs.POST("/verify", ac.VerifyChain)
		auditLogs.POST("/export", ac.ExportAuditLogs)
	}
}

// ListAuditLogs endpoint
func (ac *AuditController) ListAuditLogs(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	page, limit, err := helper_util.GetPageParams(c, audit.DefaultPageLimit, audit.MaxPageLimit)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	startDate, err := helper_util.ParseDateParam(c.Query("startDate"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	endDate, err := helper_util.ParseEndDateParam(c.Query("endDate"))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	filter := audit.Filter{
		EntityType: c.Query("entityType"),
		EntityID:   c.Query("entityId"),
		Action:     audit.Action(c.Query("action")),
		ActorID:    c.Query("actorId"),
		ActorType:  audit.ActorType(c.Query("actorType")),
		StartDate:  startDate,
		EndDate:    endDate,
		Page:       page,
		Limit:      limit,
	}

	result, err := ac.auditService.List(c, organizationID, filter)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list audit logs", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAuditLog endpoint
func (ac *AuditController) GetAuditLog(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	entry, err := ac.auditService.Get(c, organizationID, c.Param("id"))
	if err != nil {
		if errors.Is(err, vigil_errors.ErrAuditLogNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Audit log entry not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve audit log entry", err)
		}
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetEntityHistory endpoint
func (ac *AuditController) GetEntityHistory(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	page, limit, err := helper_util.GetPageParams(c, audit.DefaultPageLimit, audit.MaxPageLimit)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}

	result, err := ac.auditService.EntityHistory(c, organizationID, c.Param("entityType"), c.Param("entityId"), page, limit)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve entity history", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStats endpoint
func (ac *AuditController) GetStats(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	// Serve from cache when fresh
	if cached, err := ac.cacheService.GetAuditStats(c, organizationID); err == nil && cached != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	stats, err := ac.auditService.Stats(c, organizationID)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to compute audit stats", err)
		return
	}

	if err := ac.cacheService.SetAuditStats(c, organizationID, stats); err != nil {
		logger.Warn("Failed to cache audit stats", zap.Error(err))
	}

	c.JSON(http.StatusOK, stats)
}

// VerifyChain endpoint
func (ac *AuditController) VerifyChain(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var req audit.VerifyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid verification request", err)
			return
		}
	}

	result, err := ac.auditService.Verify(c, organizationID, req)
	if err != nil {
		if errors.Is(err, vigil_errors.ErrInvalidVerifyRange) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid verification range", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to verify audit chain", err)
		}
		return
	}

	if !result.Valid && result.FirstInvalidEntry != nil {
		if err := ac.notificationSvc.NotifyChainInvalid(c, organizationID,
			result.FirstInvalidEntry.SequenceNumber, result.FirstInvalidEntry.Error); err != nil {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to raise integrity alert", err)
			return
		}
	}

	c.JSON(http.StatusOK, result)
}

type exportRequestBody struct {
	Format     string `json:"format"`
	EntityType string `json:"entityType"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Limit      int    `json:"limit"`
}

// ExportAuditLogs endpoint
func (ac *AuditController) ExportAuditLogs(c *gin.Context) {
	organizationID, err := util.GetOrganizationIDFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var body exportRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid export request", err)
		return
	}
	startDate, err := helper_util.ParseDateParam(body.StartDate)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	endDate, err := helper_util.ParseEndDateParam(body.EndDate)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid endDate", err)
		return
	}

	result, err := ac.auditService.Export(c, organizationID, audit.ExportRequest{
		Format:     body.Format,
		EntityType: body.EntityType,
		StartDate:  startDate,
		EndDate:    endDate,
		Limit:      body.Limit,
	})
	if err != nil {
		if errors.Is(err, vigil_errors.ErrInvalidExportFormat) {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid export format", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to export audit logs", err)
		}
		return
	}

	if result.Format == audit.FormatCSV {
		filename := fmt.Sprintf("audit-logs-%s.csv", result.ExportedAt.Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "text/csv", []byte(result.CSV))
		return
	}

	c.JSON(http.StatusOK, result)
}
