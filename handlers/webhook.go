// File: handlers/webhook.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"clipbook/config"
	"clipbook/models"
	"clipbook/services/conversation"
	"clipbook/services/messenger"
	"clipbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// dedupTTL bounds how long processed webhook message ids are remembered.
	dedupTTL = 24 * time.Hour
	// turnTimeout bounds one message's worth of external calls.
	turnTimeout = 30 * time.Second
)

const fallbackReply = "Sorry, I'm having trouble processing your message. Please try again or contact us directly."

// WebhookHandler receives Meta webhook deliveries and fans messages out to
// the conversation engine.
type WebhookHandler struct {
	Engine    conversation.ConversationEngine
	Messenger messenger.MessengerService
	Dedup     *redis.Client
}

func NewWebhookHandler(engine conversation.ConversationEngine, msgr messenger.MessengerService, dedup *redis.Client) *WebhookHandler {
	return &WebhookHandler{
		Engine:    engine,
		Messenger: msgr,
		Dedup:     dedup,
	}
}

// VerifyWebhookHandler answers Meta's subscription handshake.
func (h *WebhookHandler) VerifyWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == config.AppConfig.VerifyToken {
		logger.Info("webhook verified successfully")
		c.String(http.StatusOK, challenge)
		return
	}

	logger.Warn("webhook verification failed", zap.String("mode", mode))
	utils.JSONError(c, http.StatusForbidden, "Verification failed", "")
}

// ReceiveWebhookHandler ingests messages and comment changes. It always
// answers 200 so Meta does not redeliver; failures surface as fallback DMs.
func (h *WebhookHandler) ReceiveWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var envelope models.WebhookEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.Error("failed to parse webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if envelope.Object != "instagram" {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	// Group events per sender: subjects run concurrently, while one
	// subject's messages are applied in arrival order.
	bySender := make(map[string][]models.MessagingEvent)
	var senderOrder []string
	for _, entry := range envelope.Entry {
		for _, event := range entry.Messaging {
			senderID := event.Sender.ID
			if _, seen := bySender[senderID]; !seen {
				senderOrder = append(senderOrder, senderID)
			}
			bySender[senderID] = append(bySender[senderID], event)
		}
		for _, change := range entry.Changes {
			if change.Field == "comments" {
				go h.processComment(change)
			}
		}
	}

	for _, senderID := range senderOrder {
		events := bySender[senderID]
		go func(events []models.MessagingEvent) {
			for _, event := range events {
				h.processMessage(event)
			}
		}(events)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// processMessage handles one inbound DM end to end.
func (h *WebhookHandler) processMessage(event models.MessagingEvent) {
	logger := utils.GetLogger()
	senderID := event.Sender.ID

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic processing message", zap.String("senderID", senderID), zap.Any("recover", r))
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.Messenger.SendMessage(ctx, senderID, fallbackReply); err != nil {
				logger.Error("failed to send fallback message", zap.Error(err))
			}
		}
	}()

	if event.Message == nil || event.Message.Text == "" || senderID == event.Recipient.ID {
		// No text, or the page talking to itself.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
	defer cancel()

	if !h.firstDelivery(ctx, event.Message.MID) {
		logger.Debug("skipping redelivered message", zap.String("mid", event.Message.MID))
		return
	}

	logger.Info("processing message", zap.String("senderID", senderID))

	reply := h.Engine.HandleMessage(ctx, senderID, event.Message.Text)
	if reply == "" {
		return
	}

	// Fire and log; no blocking retry.
	if err := h.Messenger.SendMessage(ctx, senderID, reply); err != nil {
		logger.Error("failed to deliver reply", zap.String("senderID", senderID), zap.Error(err))
	}
}

// firstDelivery marks the message id processed; Meta redelivers entries it
// thinks were lost. Dedup backend trouble fails open to processing.
func (h *WebhookHandler) firstDelivery(ctx context.Context, mid string) bool {
	if h.Dedup == nil || mid == "" {
		return true
	}
	set, err := h.Dedup.SetNX(ctx, "webhook:mid:"+mid, 1, dedupTTL).Result()
	if err != nil {
		utils.GetLogger().Warn("dedup check failed, processing anyway", zap.Error(err))
		return true
	}
	return set
}

// processComment answers booking-flavored comments with a nudge to DM.
func (h *WebhookHandler) processComment(change models.WebhookChange) {
	logger := utils.GetLogger()

	text := change.Value.Text
	if text == "" {
		return
	}
	commenter := ""
	if change.Value.From != nil {
		commenter = change.Value.From.ID
	}
	logger.Info("processing comment", zap.String("commenterID", commenter), zap.String("commentID", change.Value.ID))

	lower := strings.ToLower(text)
	if !strings.Contains(lower, "book") && !strings.Contains(lower, "appointment") && !strings.Contains(lower, "cut") {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Messenger.ReplyToComment(ctx, change.Value.ID, "Send us a DM and we'll get you booked in! 💈"); err != nil {
		logger.Error("failed to reply to comment", zap.String("commentID", change.Value.ID), zap.Error(err))
	}
}
