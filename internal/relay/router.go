package relay

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// WebhookPath is where the API should be configured to deliver.
const WebhookPath = "/webhooks/whatsrb"

func NewRouter(h *Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), gin.Recovery())

	r.GET("/healthz", h.Health)
	r.POST(WebhookPath, h.Webhook)

	return r
}
