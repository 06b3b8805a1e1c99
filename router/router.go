// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearledger/vigil/api/controller"
	"github.com/clearledger/vigil/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.OrgAuthMiddleware())

	api := router.Group("/api/v1")

	controllers.Audit.RegisterRoutes(api)
	controllers.Client.RegisterRoutes(api)

	return router
}
