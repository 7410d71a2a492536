package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"productif-agent/internal/model"
	"productif-agent/internal/transport/whatsapp"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/metrics"
	"productif-agent/pkg/trace"
	"productif-agent/pkg/util"
)

// MessageHandler 处理一条消息并返回回复
type MessageHandler interface {
	Handle(ctx context.Context, msg model.InboundMessage) (string, error)
}

// ReplySender 把回复发回用户
type ReplySender interface {
	Send(ctx context.Context, to, text string) error
}

// Deduper 丢弃重复投递的消息
type Deduper interface {
	AcquireOnce(ctx context.Context, scope, id string) bool
}

type allowAll struct{}

func (allowAll) AcquireOnce(context.Context, string, string) bool { return true }

type WebhookHandler struct {
	messages    MessageHandler
	sender      ReplySender
	dedup       Deduper
	verifyToken string
	timeout     time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// NewWebhookHandler 创建 webhook 处理器，dedup 为 nil 时不去重
func NewWebhookHandler(messages MessageHandler, sender ReplySender, dedup Deduper, verifyToken string, timeout time.Duration, logger *zap.Logger) *WebhookHandler {
	if dedup == nil {
		dedup = allowAll{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WebhookHandler{
		messages:    messages,
		sender:      sender,
		dedup:       dedup,
		verifyToken: verifyToken,
		timeout:     timeout,
		now:         time.Now,
		logger:      logger,
	}
}

// Verify handles GET /webhook
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || h.verifyToken == "" || token != h.verifyToken {
		h.logger.Warn("webhook verification refused", zap.String("mode", mode))
		c.Status(http.StatusForbidden)
		return
	}

	h.logger.Info("webhook verified")
	c.String(http.StatusOK, challenge)
}

// Receive handles POST /webhook
func (h *WebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	msgs, err := whatsapp.ParseWebhook(body, h.now())
	if err != nil {
		h.logger.Warn("failed to parse webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	processed := 0
	for _, msg := range msgs {
		if h.process(c.Request.Context(), msg) {
			processed++
		}
	}

	// WhatsApp 只要求 200，失败已在日志和指标中记录
	c.JSON(http.StatusOK, gin.H{"status": "ok", "processed": processed})
}

// process 处理单条消息，返回是否发出了回复
func (h *WebhookHandler) process(parent context.Context, msg model.InboundMessage) bool {
	ctx, cancel := context.WithTimeout(parent, h.timeout)
	defer cancel()
	ctx = trace.WithContext(ctx, trace.GenerateTraceID())
	log := logger.WithUser(logger.WithTrace(ctx, h.logger), msg.UserID)

	if !h.dedup.AcquireOnce(ctx, "whatsapp", msg.ID) {
		metrics.IncrementMessagesProcessed("duplicate")
		return false
	}

	text, err := h.messages.Handle(ctx, msg)
	if err != nil {
		log.Info("message handled with error", zap.String("error_type", util.ClassifyError(err)))
	}

	if err := h.sender.Send(ctx, msg.UserID, text); err != nil {
		log.Error("failed to send reply",
			zap.String("error_type", util.ClassifyError(err)),
			zap.Bool("retryable", util.IsRetryable(err)),
			zap.Error(err))
		metrics.IncrementMessagesProcessed("failed")
		return false
	}

	metrics.IncrementMessagesProcessed("replied")
	return true
}
