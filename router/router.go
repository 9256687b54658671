// router/router.go

package router

import (
	"time"

	"github.com/dev-mohitbeniwal/mintgate/controller"
	"github.com/dev-mohitbeniwal/mintgate/middleware"
	"github.com/gin-gonic/gin"
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
	router.Use(middleware.CallerAuth())

	api := router.Group("/api/v1")

	controllers.Whitelist.RegisterRoutes(api)
	controllers.Hook.RegisterRoutes(api)

	return router
}
