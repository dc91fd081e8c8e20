package routes

import (
	"net/http"

	"cutordie_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every HTTP route onto the engine. The auth
// middleware is built by the caller; capability checks live with each
// handler's routes.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	authMW gin.HandlerFunc,
) {
	ginRouter.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := ginRouter.Group("/api/v1")
	{
		appHandlers.Auth.RegisterRoutes(api, authMW)
		appHandlers.User.RegisterRoutes(api, authMW)
		appHandlers.Course.RegisterRoutes(api, authMW)
		appHandlers.Purchase.RegisterRoutes(api, authMW)
	}
}
