package admin

import (
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminUserLoginLogs 获取用户登录日志 (Admin)
func (h *Handler) GetAdminUserLoginLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.UserLoginLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		Email:      strings.TrimSpace(c.Query("email")),
		Status:     strings.TrimSpace(c.Query("status")),
		FailReason: strings.TrimSpace(c.Query("fail_reason")),
		ClientIP:   strings.TrimSpace(c.Query("client_ip")),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	logs, total, err := h.UserLoginLogService.ListForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_login_log_fetch_failed", err)
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
