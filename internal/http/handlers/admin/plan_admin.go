package admin

import (
	"errors"
	"strconv"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminPlans 获取订阅计划列表 (Admin)
func (h *Handler) GetAdminPlans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	plans, total, err := h.PlanService.ListAdmin(repository.PlanListFilter{
		Page:       page,
		PageSize:   pageSize,
		ActiveOnly: c.Query("active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, plans, pagination)
}

// PlanRequest 创建/更新计划请求
type PlanRequest struct {
	Code            string                 `json:"code" binding:"required"`
	NameJSON        map[string]interface{} `json:"name" binding:"required"`
	DescriptionJSON map[string]interface{} `json:"description"`
	PriceAmount     string                 `json:"price_amount" binding:"required"`
	Currency        string                 `json:"currency"`
	Interval        string                 `json:"interval"`
	Features        []string               `json:"features"`
	ProjectLimit    int                    `json:"project_limit"`
	IsActive        bool                   `json:"is_active"`
	SortOrder       int                    `json:"sort_order"`
}

func (r PlanRequest) toInput() service.PlanInput {
	return service.PlanInput{
		Code:            r.Code,
		NameJSON:        r.NameJSON,
		DescriptionJSON: r.DescriptionJSON,
		PriceAmount:     r.PriceAmount,
		Currency:        r.Currency,
		Interval:        r.Interval,
		Features:        r.Features,
		ProjectLimit:    r.ProjectLimit,
		IsActive:        r.IsActive,
		SortOrder:       r.SortOrder,
	}
}

// CreatePlan 创建订阅计划
func (h *Handler) CreatePlan(c *gin.Context) {
	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	plan, err := h.PlanService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanCodeExists):
			respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, plan)
}

// UpdatePlan 更新订阅计划
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	plan, err := h.PlanService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.plan_not_found", nil)
		case errors.Is(err, service.ErrPlanCodeExists):
			respondError(c, response.CodeBadRequest, "error.slug_exists", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, plan)
}

// DeletePlan 删除计划，存在订阅时拒绝
func (h *Handler) DeletePlan(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.PlanService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.plan_not_found", nil)
		case errors.Is(err, service.ErrPlanInUse):
			respondError(c, response.CodeBadRequest, "error.plan_in_use", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
