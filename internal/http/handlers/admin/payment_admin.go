package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPayments 获取支付列表 (Admin)
func (h *Handler) GetAdminPayments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.PaymentListFilter{
		Page:         page,
		PageSize:     pageSize,
		Purpose:      strings.TrimSpace(c.Query("purpose")),
		ProviderType: strings.TrimSpace(c.Query("provider_type")),
		Status:       strings.TrimSpace(c.Query("status")),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}
	if templateID, err := strconv.ParseUint(c.Query("template_id"), 10, 32); err == nil && templateID > 0 {
		filter.TemplateID = uint(templateID)
	}
	if planID, err := strconv.ParseUint(c.Query("plan_id"), 10, 32); err == nil && planID > 0 {
		filter.PlanID = uint(planID)
	}
	if channelID, err := strconv.ParseUint(c.Query("channel_id"), 10, 32); err == nil && channelID > 0 {
		filter.ChannelID = uint(channelID)
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	payments, total, err := h.PaymentService.ListPayments(filter)
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

// GetAdminPayment 获取支付详情 (Admin)
func (h *Handler) GetAdminPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	payment, err := h.PaymentService.GetPayment(id)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "error.payment_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.payment_fetch_failed", err)
		return
	}

	response.Success(c, payment)
}

// GetAdminSubscriptions 获取订阅列表 (Admin)
func (h *Handler) GetAdminSubscriptions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.SubscriptionListFilter{
		Page:         page,
		PageSize:     pageSize,
		Status:       strings.TrimSpace(c.Query("status")),
		ProviderType: strings.TrimSpace(c.Query("provider_type")),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}
	if planID, err := strconv.ParseUint(c.Query("plan_id"), 10, 32); err == nil && planID > 0 {
		filter.PlanID = uint(planID)
	}

	subscriptions, total, err := h.SubscriptionService.ListAdmin(filter)
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
	response.SuccessWithPage(c, subscriptions, pagination)
}
