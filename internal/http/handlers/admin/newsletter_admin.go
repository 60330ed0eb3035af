package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminNewsletterSubscribers 获取订阅者列表 (Admin)
func (h *Handler) GetAdminNewsletterSubscribers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.NewsletterListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	subscribers, total, err := h.NewsletterService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.newsletter_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, subscribers, pagination)
}

// GetAdminNewsletterStats 订阅状态计数
func (h *Handler) GetAdminNewsletterStats(c *gin.Context) {
	stats := gin.H{}
	for _, status := range []string{
		constants.NewsletterStatusPending,
		constants.NewsletterStatusConfirmed,
		constants.NewsletterStatusUnsubscribed,
	} {
		count, err := h.NewsletterService.CountByStatus(status)
		if err != nil {
			respondError(c, response.CodeInternal, "error.newsletter_fetch_failed", err)
			return
		}
		stats[status] = count
	}
	response.Success(c, stats)
}

// DeleteNewsletterSubscriber 删除订阅者
func (h *Handler) DeleteNewsletterSubscriber(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.NewsletterService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
