package public

import (
	"errors"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/i18n"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// SubscribeNewsletterRequest 订阅请求
type SubscribeNewsletterRequest struct {
	Email string `json:"email" binding:"required"`
}

// SubscribeNewsletter 订阅 Newsletter（双重确认第一步）
func (h *Handler) SubscribeNewsletter(c *gin.Context) {
	var req SubscribeNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	subscriber, err := h.NewsletterService.Subscribe(service.SubscribeInput{
		Email:    req.Email,
		Locale:   i18n.ResolveLocale(c),
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		case errors.Is(err, service.ErrNewsletterSubscribed):
			respondError(c, response.CodeBadRequest, "error.newsletter_subscribed", nil)
		default:
			respondError(c, response.CodeInternal, "error.subscribe_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"email":  subscriber.Email,
		"status": subscriber.Status,
	})
}

// ConfirmNewsletter 确认订阅（邮件链接回跳）
func (h *Handler) ConfirmNewsletter(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	subscriber, err := h.NewsletterService.Confirm(token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNewsletterTokenInvalid), errors.Is(err, service.ErrNewsletterTokenExpired):
			respondError(c, response.CodeBadRequest, "error.newsletter_token_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"email":  subscriber.Email,
		"status": subscriber.Status,
	})
}

// UnsubscribeNewsletterRequest 退订请求
type UnsubscribeNewsletterRequest struct {
	Email string `json:"email" binding:"required"`
}

// UnsubscribeNewsletter 退订 Newsletter
func (h *Handler) UnsubscribeNewsletter(c *gin.Context) {
	var req UnsubscribeNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.NewsletterService.Unsubscribe(req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.not_found", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"unsubscribed": true})
}
