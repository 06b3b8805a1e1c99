// middleware/org_auth.go

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearledger/vigil/api/config"
	logger "github.com/clearledger/vigil/api/logging"
)

// OrgClaims are the token claims this service cares about: which tenant the
// request is scoped to and who the acting principal is.
type OrgClaims struct {
	jwt.StandardClaims
	OrganizationID string `json:"org_id"`
	ActorType      string `json:"actor_type"`
}

// OrgAuthMiddleware enforces tenant scoping at the boundary. Every handler
// downstream reads organizationID/actorID from the context and never from
// the request itself, so cross-tenant reads cannot be expressed.
//
// Outside release mode an X-Org-ID header may stand in for a token, which
// keeps local development and integration tests free of token plumbing.
func OrgAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if gin.Mode() != gin.ReleaseMode {
				if orgID := c.GetHeader("X-Org-ID"); orgID != "" {
					c.Set("organizationID", orgID)
					c.Set("actorID", c.GetHeader("X-Actor-ID"))
					c.Next()
					return
				}
			}
			logger.Warn("No Authorization token provided")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := parseOrgToken(tokenString)
		if err != nil {
			logger.Error("Error parsing token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if claims.OrganizationID == "" {
			logger.Warn("Token carries no organization claim",
				zap.String("subject", claims.Subject))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set("organizationID", claims.OrganizationID)
		c.Set("actorID", claims.Subject)
		c.Set("actorType", claims.ActorType)

		c.Next()
	}
}

func parseOrgToken(tokenString string) (*OrgClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	secret := []byte(config.GetString("auth.jwtSecret"))

	token, err := jwt.ParseWithClaims(tokenString, &OrgClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what you expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*OrgClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token or wrong claims type")
}
