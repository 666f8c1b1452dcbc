package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tonrent/tonrent/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(handshake *service.HandshakeService, rental *service.RentalService) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(handshake, rental)

	auth := router.Group("/auth")
	{
		auth.GET("/link", handlers.AuthLink)
		auth.GET("/callback", handlers.AuthCallback)
	}

	items := router.Group("/items")
	{
		items.GET("", handlers.Items)
		items.POST("/offer", handlers.Offer)
		items.POST("/rent", handlers.Rent)
		items.POST("/code", handlers.ReissueCode)
		items.GET("/mine/:wallet", handlers.Mine)
		items.GET("/external/:wallet", handlers.ExternalItems)
	}

	router.GET("/wallet/:user_id", handlers.Wallet)

	return router
}
