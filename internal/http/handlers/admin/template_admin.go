package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminTemplates 获取模板列表 (Admin)
func (h *Handler) GetAdminTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID := c.Query("category_id")
	status := strings.TrimSpace(c.Query("status"))
	framework := strings.TrimSpace(c.Query("framework"))
	search := strings.TrimSpace(c.Query("search"))

	templates, total, err := h.TemplateService.ListAdmin(categoryID, status, framework, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.template_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, templates, pagination)
}

// GetAdminTemplate 获取模板详情 (Admin)
func (h *Handler) GetAdminTemplate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	template, err := h.TemplateService.GetAdminByID(id)
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			respondError(c, response.CodeNotFound, "error.template_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.template_fetch_failed", err)
		return
	}

	response.Success(c, template)
}

// TemplateRequest 创建/更新模板请求
type TemplateRequest struct {
	CategoryID      uint                   `json:"category_id" binding:"required"`
	Slug            string                 `json:"slug" binding:"required"`
	TitleJSON       map[string]interface{} `json:"title" binding:"required"`
	DescriptionJSON map[string]interface{} `json:"description"`
	PreviewImage    string                 `json:"preview_image"`
	DemoURL         string                 `json:"demo_url"`
	Framework       string                 `json:"framework"`
	Tags            []string               `json:"tags"`
	PriceAmount     string                 `json:"price_amount"`
	Currency        string                 `json:"currency"`
	IsFeatured      bool                   `json:"is_featured"`
	SortOrder       int                    `json:"sort_order"`
}

func (r TemplateRequest) toInput() service.TemplateInput {
	return service.TemplateInput{
		CategoryID:      r.CategoryID,
		Slug:            r.Slug,
		TitleJSON:       r.TitleJSON,
		DescriptionJSON: r.DescriptionJSON,
		PreviewImage:    r.PreviewImage,
		DemoURL:         r.DemoURL,
		Framework:       r.Framework,
		Tags:            r.Tags,
		PriceAmount:     r.PriceAmount,
		Currency:        r.Currency,
		IsFeatured:      r.IsFeatured,
		SortOrder:       r.SortOrder,
	}
}

func (h *Handler) respondTemplateMutationError(c *gin.Context, err error, fallbackKey string) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		respondError(c, response.CodeNotFound, "error.template_not_found", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "error.category_not_found", nil)
	case errors.Is(err, service.ErrSlugExists):
		respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
	case errors.Is(err, service.ErrTemplateStatusInvalid):
		respondError(c, response.CodeBadRequest, "error.template_status_invalid", nil)
	default:
		respondError(c, response.CodeInternal, fallbackKey, err)
	}
}

// CreateTemplate 创建模板（draft 状态）
func (h *Handler) CreateTemplate(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	template, err := h.TemplateService.Create(req.toInput(), operator, adminMeta(c))
	if err != nil {
		h.respondTemplateMutationError(c, err, "error.template_create_failed")
		return
	}

	response.Success(c, template)
}

// UpdateTemplate 更新模板
func (h *Handler) UpdateTemplate(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	template, err := h.TemplateService.Update(id, req.toInput(), operator, adminMeta(c))
	if err != nil {
		h.respondTemplateMutationError(c, err, "error.template_update_failed")
		return
	}

	response.Success(c, template)
}

// DeployTemplate 触发模板构建，状态 draft → deploying
func (h *Handler) DeployTemplate(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	template, err := h.TemplateService.Deploy(id, operator, adminMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQueueUnavailable):
			respondError(c, response.CodeInternal, "error.queue_unavailable", nil)
		default:
			h.respondTemplateMutationError(c, err, "error.template_update_failed")
		}
		return
	}

	response.Success(c, template)
}

// DisableTemplate 下架模板
func (h *Handler) DisableTemplate(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.TemplateService.Disable(id, operator, adminMeta(c)); err != nil {
		h.respondTemplateMutationError(c, err, "error.template_update_failed")
		return
	}

	response.Success(c, gin.H{"disabled": true})
}

// DeleteTemplate 删除模板（软删除）
func (h *Handler) DeleteTemplate(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.TemplateService.Delete(id, operator, adminMeta(c)); err != nil {
		h.respondTemplateMutationError(c, err, "error.template_delete_failed")
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
