package public

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetTemplates 市场模板列表（仅 live）
func (h *Handler) GetTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	categoryID := c.Query("category_id")
	framework := strings.TrimSpace(c.Query("framework"))
	search := strings.TrimSpace(c.Query("search"))
	featuredOnly := c.Query("featured") == "true"

	templates, total, err := h.TemplateService.ListPublic(categoryID, framework, search, featuredOnly, page, pageSize)
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

// GetFeaturedTemplates 首页精选模板
func (h *Handler) GetFeaturedTemplates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit <= 0 {
		limit = 8
	}
	if limit > 50 {
		limit = 50
	}

	templates, err := h.TemplateService.ListFeatured(limit)
	if err != nil {
		respondError(c, response.CodeInternal, "error.template_fetch_failed", err)
		return
	}
	response.Success(c, templates)
}

// GetTemplateBySlug 模板详情，顺带记录一次浏览
func (h *Handler) GetTemplateBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	template, err := h.TemplateService.GetPublicBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrTemplateNotLive):
			// 未上架对外视同不存在
			respondError(c, response.CodeNotFound, "error.template_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.template_fetch_failed", err)
		}
		return
	}

	h.AnalyticsService.RecordView(template.ID)
	response.Success(c, template)
}

// AcquireFreeTemplate 免费模板一键入库
func (h *Handler) AcquireFreeTemplate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	templateID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || templateID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	purchase, err := h.PaymentService.AcquireFreeTemplate(uid, uint(templateID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			respondError(c, response.CodeNotFound, "error.template_not_found", nil)
		case errors.Is(err, service.ErrTemplateNotLive):
			respondError(c, response.CodeBadRequest, "error.template_not_live", nil)
		case errors.Is(err, service.ErrPaymentInvalid):
			respondError(c, response.CodeBadRequest, "error.payment_free_template", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, purchase)
}

// DownloadTemplate 下载模板源码包，付费模板校验购买记录
func (h *Handler) DownloadTemplate(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	slug := strings.TrimSpace(c.Param("slug"))
	template, err := h.TemplateService.GetPublicBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound), errors.Is(err, service.ErrTemplateNotLive):
			respondError(c, response.CodeNotFound, "error.template_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.template_fetch_failed", err)
		}
		return
	}

	if !template.PriceAmount.IsZero() {
		purchased, perr := h.TemplateService.HasPurchased(uid, template.ID)
		if perr != nil {
			respondError(c, response.CodeInternal, "error.template_fetch_failed", perr)
			return
		}
		if !purchased {
			respondError(c, response.CodeForbidden, "error.purchase_required", nil)
			return
		}
	}

	h.AnalyticsService.RecordDownload(template.ID)

	baseDomain := "pagespark.site"
	if h.Config != nil && strings.TrimSpace(h.Config.Generator.SiteBaseDomain) != "" {
		baseDomain = strings.TrimSpace(h.Config.Generator.SiteBaseDomain)
	}
	response.Success(c, gin.H{
		"template_id":  template.ID,
		"slug":         template.Slug,
		"framework":    template.Framework,
		"download_url": fmt.Sprintf("https://assets.%s/templates/%s.zip", baseDomain, template.Slug),
	})
}

// GetMyTemplates 当前用户已获得的模板
func (h *Handler) GetMyTemplates(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	purchases, total, err := h.TemplateService.ListPurchasesByUser(uid, page, pageSize)
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
	response.SuccessWithPage(c, purchases, pagination)
}
