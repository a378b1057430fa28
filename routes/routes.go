package routes

import (
	"time"

	"clipbook/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle carries the wired handlers into route registration.
type HandlerBundle struct {
	HealthHandler         gin.HandlerFunc
	VerifyWebhookHandler  gin.HandlerFunc
	ReceiveWebhookHandler gin.HandlerFunc
}

// RegisterRoutes registers all endpoints with the assembled handler bundle.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	r.GET("/", hb.HealthHandler)
	r.GET("/webhook", hb.VerifyWebhookHandler)
	r.POST("/webhook", hb.ReceiveWebhookHandler)
}

// NewHandlerBundle assembles the bundle from the webhook handler.
func NewHandlerBundle(wh *handlers.WebhookHandler) *HandlerBundle {
	return &HandlerBundle{
		HealthHandler:         handlers.HealthHandler,
		VerifyWebhookHandler:  wh.VerifyWebhookHandler,
		ReceiveWebhookHandler: wh.ReceiveWebhookHandler,
	}
}
