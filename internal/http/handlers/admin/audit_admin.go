package admin

import (
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminAuditLogs 获取管理员操作审计日志（只读）
func (h *Handler) GetAdminAuditLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AdminAuditLogListFilter{
		Page:         page,
		PageSize:     pageSize,
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resource_type")),
		ResourceID:   strings.TrimSpace(c.Query("resource_id")),
		Outcome:      strings.TrimSpace(c.Query("outcome")),
	}
	if adminID, err := strconv.ParseUint(c.Query("admin_id"), 10, 32); err == nil && adminID > 0 {
		filter.AdminID = uint(adminID)
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	logs, total, err := h.AdminAuditService.ListAuditLogs(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, logs, pagination)
}

// GetAdminLoginAttempts 获取管理员登录尝试记录（只读）
func (h *Handler) GetAdminLoginAttempts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.AdminLoginAttemptListFilter{
		Page:       page,
		PageSize:   pageSize,
		Email:      strings.TrimSpace(c.Query("email")),
		FailReason: strings.TrimSpace(c.Query("fail_reason")),
		ClientIP:   strings.TrimSpace(c.Query("client_ip")),
	}
	if adminID, err := strconv.ParseUint(c.Query("admin_id"), 10, 32); err == nil && adminID > 0 {
		filter.AdminID = uint(adminID)
	}
	if raw := strings.TrimSpace(c.Query("success")); raw != "" {
		if success, err := strconv.ParseBool(raw); err == nil {
			filter.Success = &success
		}
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	attempts, total, err := h.AdminAuditService.ListLoginAttempts(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.audit_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, attempts, pagination)
}
