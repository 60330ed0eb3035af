package admin

import (
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminProjects 获取项目列表 (Admin)
func (h *Handler) GetAdminProjects(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ProjectListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	if userID, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil && userID > 0 {
		filter.UserID = uint(userID)
	}
	if templateID, err := strconv.ParseUint(c.Query("template_id"), 10, 32); err == nil && templateID > 0 {
		filter.TemplateID = uint(templateID)
	}
	if from, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from"))); err == nil {
		filter.CreatedFrom = from
	}
	if to, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to"))); err == nil {
		filter.CreatedTo = to
	}

	projects, total, err := h.ProjectService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "error.project_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, projects, pagination)
}
