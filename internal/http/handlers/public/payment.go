package public

import (
	"errors"
	"strconv"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 创建支付请求
type CreatePaymentRequest struct {
	Purpose    string `json:"purpose" binding:"required"`
	TemplateID uint   `json:"template_id"`
	PlanID     uint   `json:"plan_id"`
	ChannelID  uint   `json:"channel_id" binding:"required"`
}

// CreatePayment 创建支付单并向网关下单
// 同一标的已有未过期 pending 支付时直接复用。
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.PaymentService.CreatePayment(service.CreatePaymentInput{
		UserID:     uid,
		Purpose:    req.Purpose,
		TemplateID: req.TemplateID,
		PlanID:     req.PlanID,
		ChannelID:  req.ChannelID,
		ClientIP:   c.ClientIP(),
		Context:    c.Request.Context(),
	})
	if err != nil {
		respondPaymentCreateError(c, err)
		return
	}

	response.Success(c, buildPaymentPayload(result.Payment, result.Reused))
}

// GetMyPayments 当前用户支付记录
func (h *Handler) GetMyPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	payments, total, err := h.PaymentService.ListPaymentsByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, payments, pagination)
}

// GetMyPayment 支付单详情（轮询支付状态用）
func (h *Handler) GetMyPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || paymentID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	payment, err := h.PaymentService.GetPaymentForUser(uid, uint(paymentID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "error.payment_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		}
		return
	}

	response.Success(c, buildPaymentPayload(payment, false))
}

// GetMySubscription 当前用户订阅状态
func (h *Handler) GetMySubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	subscription, err := h.SubscriptionService.GetActiveForUser(uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Success(c, gin.H{"subscription": nil})
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{"subscription": subscription})
}

// CancelMySubscription 取消订阅（期末生效）
func (h *Handler) CancelMySubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	subscription, err := h.SubscriptionService.Cancel(uid)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.subscription_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"subscription": subscription})
}

func buildPaymentPayload(payment *models.Payment, reused bool) gin.H {
	return gin.H{
		"payment_id":       payment.ID,
		"payment_no":       payment.PaymentNo,
		"purpose":          payment.Purpose,
		"template_id":      payment.TemplateID,
		"plan_id":          payment.PlanID,
		"channel_id":       payment.ChannelID,
		"provider_type":    payment.ProviderType,
		"interaction_mode": payment.InteractionMode,
		"amount":           payment.Amount,
		"currency":         payment.Currency,
		"status":           payment.Status,
		"pay_url":          payment.PayURL,
		"qr_code":          payment.QRCode,
		"expires_at":       payment.ExpiredAt,
		"paid_at":          payment.PaidAt,
		"reused":           reused,
	}
}
