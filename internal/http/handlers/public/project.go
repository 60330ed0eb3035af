package public

import (
	"errors"
	"strconv"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name       string `json:"name" binding:"required"`
	Subdomain  string `json:"subdomain" binding:"required"`
	Prompt     string `json:"prompt"`
	TemplateID *uint  `json:"template_id"`
}

// CreateProject 创建生成项目并排队生成
func (h *Handler) CreateProject(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	project, err := h.ProjectService.Create(uid, service.CreateProjectInput{
		Name:       req.Name,
		Subdomain:  req.Subdomain,
		Prompt:     req.Prompt,
		TemplateID: req.TemplateID,
	})
	if err != nil {
		respondWithMappedError(c, err, projectCreateErrorRules, response.CodeInternal, "error.project_create_failed")
		return
	}

	response.Success(c, h.projectPayload(project))
}

// GetMyProjects 当前用户项目列表
func (h *Handler) GetMyProjects(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	projects, total, err := h.ProjectService.ListByUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.project_fetch_failed", err)
		return
	}

	items := make([]gin.H, 0, len(projects))
	for i := range projects {
		items = append(items, h.projectPayload(&projects[i]))
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetMyProject 项目详情
func (h *Handler) GetMyProject(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.ProjectService.Get(uid, projectID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	response.Success(c, h.projectPayload(project))
}

// PublishProject 发布已生成的项目
func (h *Handler) PublishProject(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	project, err := h.ProjectService.Publish(uid, projectID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.project_not_ready", nil)
		default:
			h.respondProjectError(c, err)
		}
		return
	}

	response.Success(c, h.projectPayload(project))
}

// RegenerateProjectRequest 重新生成请求
type RegenerateProjectRequest struct {
	Prompt string `json:"prompt"`
}

// RegenerateProject 带新提示词重新排队生成
func (h *Handler) RegenerateProject(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req RegenerateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	project, err := h.ProjectService.Regenerate(uid, projectID, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQueueUnavailable):
			respondError(c, response.CodeInternal, "error.queue_unavailable", nil)
		case errors.Is(err, service.ErrProjectStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.project_not_ready", nil)
		default:
			h.respondProjectError(c, err)
		}
		return
	}

	response.Success(c, h.projectPayload(project))
}

// DeleteMyProject 删除项目
func (h *Handler) DeleteMyProject(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	projectID, ok := parseProjectID(c)
	if !ok {
		return
	}

	if err := h.ProjectService.Delete(uid, projectID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

func parseProjectID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondError(c, response.CodeNotFound, "error.project_not_found", nil)
	default:
		respondError(c, response.CodeInternal, "error.project_fetch_failed", err)
	}
}

func (h *Handler) projectPayload(project *models.Project) gin.H {
	payload := gin.H{
		"id":           project.ID,
		"name":         project.Name,
		"subdomain":    project.Subdomain,
		"prompt":       project.Prompt,
		"status":       project.Status,
		"site_config":  project.SiteConfigJSON,
		"fail_reason":  project.FailReason,
		"template_id":  project.TemplateID,
		"generated_at": project.GeneratedAt,
		"published_at": project.PublishedAt,
		"created_at":   project.CreatedAt,
	}
	if h.ProjectService != nil {
		payload["site_url"] = h.ProjectService.SiteURL(project)
	}
	return payload
}
