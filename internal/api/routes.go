package api

import (
	"net/http"

	"detectorbot/relay/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires all handlers onto the router.
func SetupRoutes(
	router *gin.Engine,
	resolver service.IdentityResolver,
	authHandler *AuthHandler,
	uploadHandler *UploadHandler,
	historyHandler *HistoryHandler,
	webhookHandler *WebhookHandler,
) {
	// Browser upload clients live on other origins; bearer tokens ride in the
	// Authorization header.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	authMiddleware := OptionalAuthMiddleware(resolver)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "deepfake-detector-relay"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WhatsApp webhook: GET for the verification handshake, POST for events.
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Receive)

	apiGroup := router.Group("/api")
	apiGroup.Use(authMiddleware)
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		apiGroup.POST("/upload", uploadHandler.Upload)
		apiGroup.GET("/history", historyHandler.List)
		apiGroup.GET("/history/:id", historyHandler.GetOne)

		// POST /api/session - mint a fresh ephemeral handle for anonymous
		// web clients.
		apiGroup.POST("/session", func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"success": true, "session_id": resolver.EphemeralHandle()})
		})
	}
}
