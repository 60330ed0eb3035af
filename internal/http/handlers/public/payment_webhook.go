package public

import (
	"io"
	"net/http"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// StripeWebhookQuery Stripe webhook 查询参数。
type StripeWebhookQuery struct {
	ChannelID uint `form:"channel_id"`
}

// WechatWebhookQuery 微信支付回调查询参数。
type WechatWebhookQuery struct {
	ChannelID uint `form:"channel_id"`
}

const webhookLogValueLimit = 4096

func truncateWebhookLogValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) <= webhookLogValueLimit {
		return raw
	}
	return raw[:webhookLogValueLimit] + "...(truncated)"
}

func webhookRawBodyForLog(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return truncateWebhookLogValue(string(body))
}

func webhookHeaders(c *gin.Context) map[string]string {
	headers := make(map[string]string)
	for key, values := range c.Request.Header {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}
	return headers
}

// StripeWebhook Stripe webhook 回调。
func (h *Handler) StripeWebhook(c *gin.Context) {
	log := requestLog(c)
	var query StripeWebhookQuery
	_ = c.ShouldBindQuery(&query)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("stripe_webhook_body_read_failed", "channel_id", query.ChannelID, "error", err)
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	log.Infow("stripe_webhook_received",
		"channel_id", query.ChannelID,
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"stripe_signature", truncateWebhookLogValue(c.GetHeader("Stripe-Signature")),
		"raw_body", webhookRawBodyForLog(body),
	)

	payment, eventType, err := h.PaymentService.HandleStripeWebhook(service.WebhookCallbackInput{
		ChannelID: query.ChannelID,
		Headers:   webhookHeaders(c),
		Body:      body,
		Context:   c.Request.Context(),
	})
	if err != nil {
		log.Warnw("stripe_webhook_handle_failed",
			"channel_id", query.ChannelID,
			"event_type", eventType,
			"error", err,
		)
		respondPaymentWebhookError(c, err)
		return
	}

	if payment == nil {
		log.Infow("stripe_webhook_accepted_no_payment",
			"channel_id", query.ChannelID,
			"event_type", eventType,
		)
		response.Success(c, gin.H{
			"accepted":   true,
			"event_type": eventType,
			"updated":    false,
		})
		return
	}

	log.Infow("stripe_webhook_processed",
		"channel_id", query.ChannelID,
		"event_type", eventType,
		"payment_id", payment.ID,
		"status", payment.Status,
	)
	response.Success(c, gin.H{
		"accepted":   true,
		"event_type": eventType,
		"updated":    true,
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

// WechatWebhook 微信支付 native 回调。
func (h *Handler) WechatWebhook(c *gin.Context) {
	log := requestLog(c)
	var query WechatWebhookQuery
	_ = c.ShouldBindQuery(&query)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		log.Warnw("wechat_webhook_body_read_failed", "channel_id", query.ChannelID, "error", err)
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	log.Infow("wechat_webhook_received",
		"channel_id", query.ChannelID,
		"client_ip", c.ClientIP(),
		"body_size", len(body),
		"wechatpay_serial", truncateWebhookLogValue(c.GetHeader("Wechatpay-Serial")),
		"wechatpay_nonce", truncateWebhookLogValue(c.GetHeader("Wechatpay-Nonce")),
		"raw_body", webhookRawBodyForLog(body),
	)

	payment, eventType, err := h.PaymentService.HandleWechatWebhook(service.WebhookCallbackInput{
		ChannelID: query.ChannelID,
		Headers:   webhookHeaders(c),
		Body:      body,
		Context:   c.Request.Context(),
	})
	if err != nil {
		log.Warnw("wechat_webhook_handle_failed",
			"channel_id", query.ChannelID,
			"event_type", eventType,
			"error", err,
		)
		respondWechatWebhook(c, false)
		return
	}

	if payment == nil {
		log.Infow("wechat_webhook_accepted_no_payment",
			"channel_id", query.ChannelID,
			"event_type", eventType,
		)
		respondWechatWebhook(c, true)
		return
	}

	log.Infow("wechat_webhook_processed",
		"channel_id", query.ChannelID,
		"event_type", eventType,
		"payment_id", payment.ID,
		"status", payment.Status,
	)
	respondWechatWebhook(c, true)
}

// respondWechatWebhook 微信回调要求裸 JSON 应答，不走统一响应包装。
func respondWechatWebhook(c *gin.Context, success bool) {
	if success {
		c.JSON(http.StatusOK, gin.H{
			"code":    "SUCCESS",
			"message": "成功",
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    "FAIL",
		"message": "失败",
	})
}
