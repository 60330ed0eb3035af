package admin

import (
	"errors"
	"strconv"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCategories 获取分类列表 (Admin)
func (h *Handler) GetAdminCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// CategoryRequest 创建/更新分类请求
type CategoryRequest struct {
	Slug            string                 `json:"slug" binding:"required"`
	NameJSON        map[string]interface{} `json:"name" binding:"required"`
	DescriptionJSON map[string]interface{} `json:"description"`
	Icon            string                 `json:"icon"`
	SortOrder       int                    `json:"sort_order"`
}

func (r CategoryRequest) toInput() service.CategoryInput {
	return service.CategoryInput{
		Slug:            r.Slug,
		NameJSON:        r.NameJSON,
		DescriptionJSON: r.DescriptionJSON,
		Icon:            r.Icon,
		SortOrder:       r.SortOrder,
	}
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	category, err := h.CategoryService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSlugExists):
			respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.category_create_failed", err)
		}
		return
	}

	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	category, err := h.CategoryService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "error.category_not_found", nil)
		case errors.Is(err, service.ErrSlugExists):
			respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.category_update_failed", err)
		}
		return
	}

	response.Success(c, category)
}

// DeleteCategory 删除分类，被模板引用时拒绝
func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.CategoryService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "error.category_not_found", nil)
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, response.CodeBadRequest, "error.category_in_use", nil)
		default:
			respondError(c, response.CodeInternal, "error.category_delete_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(id), true
}
