package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPaymentChannels 获取支付渠道列表 (Admin)
func (h *Handler) GetAdminPaymentChannels(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	channels, total, err := h.PaymentService.ListChannels(repository.PaymentChannelListFilter{
		Page:         page,
		PageSize:     pageSize,
		ProviderType: strings.TrimSpace(c.Query("provider_type")),
		ActiveOnly:   c.Query("active") == "true",
	})
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
	response.SuccessWithPage(c, channels, pagination)
}

// GetAdminPaymentChannel 获取支付渠道详情 (Admin)
func (h *Handler) GetAdminPaymentChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	channel, err := h.PaymentService.GetChannel(id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentChannelNotFound) {
			respondError(c, response.CodeNotFound, "error.payment_channel_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}

	response.Success(c, channel)
}

// PaymentChannelRequest 创建/更新支付渠道请求
type PaymentChannelRequest struct {
	Name            string                 `json:"name" binding:"required"`
	ProviderType    string                 `json:"provider_type" binding:"required"`
	InteractionMode string                 `json:"interaction_mode"`
	FeeRate         string                 `json:"fee_rate"`
	ConfigJSON      map[string]interface{} `json:"config"`
	IsActive        *bool                  `json:"is_active"`
	SortOrder       *int                   `json:"sort_order"`
}

func (r PaymentChannelRequest) toInput() service.PaymentChannelInput {
	return service.PaymentChannelInput{
		Name:            r.Name,
		ProviderType:    r.ProviderType,
		InteractionMode: r.InteractionMode,
		FeeRate:         r.FeeRate,
		ConfigJSON:      models.JSON(r.ConfigJSON),
		IsActive:        r.IsActive,
		SortOrder:       r.SortOrder,
	}
}

func respondChannelMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentChannelNotFound):
		respondError(c, response.CodeNotFound, "error.payment_channel_invalid", nil)
	case errors.Is(err, service.ErrPaymentProviderNotSupported),
		errors.Is(err, service.ErrPaymentChannelConfigInvalid):
		respondError(c, response.CodeBadRequest, "error.payment_channel_invalid", nil)
	default:
		respondError(c, response.CodeInternal, "error.save_failed", err)
	}
}

// CreatePaymentChannel 创建支付渠道
func (h *Handler) CreatePaymentChannel(c *gin.Context) {
	var req PaymentChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	channel, err := h.PaymentService.CreateChannel(req.toInput())
	if err != nil {
		respondChannelMutationError(c, err)
		return
	}

	response.Success(c, channel)
}

// UpdatePaymentChannel 更新支付渠道
func (h *Handler) UpdatePaymentChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PaymentChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	channel, err := h.PaymentService.UpdateChannel(id, req.toInput())
	if err != nil {
		respondChannelMutationError(c, err)
		return
	}

	response.Success(c, channel)
}

// DeletePaymentChannel 删除支付渠道（软删除）
func (h *Handler) DeletePaymentChannel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.PaymentService.DeleteChannel(id); err != nil {
		respondChannelMutationError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
