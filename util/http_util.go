// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	vigil_errors "github.com/clearledger/vigil/api/errors"
	logger "github.com/clearledger/vigil/api/logging"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetOrganizationIDFromContext returns the tenant the request is scoped to.
// The org auth middleware sets it; a request without one never reaches the
// audit surface.
func GetOrganizationIDFromContext(c *gin.Context) (string, error) {
	organizationID, exists := c.Get("organizationID")
	if !exists {
		return "", vigil_errors.ErrMissingOrganization
	}
	return organizationID.(string), nil
}

// GetActorIDFromContext returns the authenticated actor, or "" for
// unauthenticated system traffic.
func GetActorIDFromContext(c *gin.Context) string {
	actorID, exists := c.Get("actorID")
	if !exists {
		return ""
	}
	return actorID.(string)
}
