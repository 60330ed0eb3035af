package admin

import (
	"errors"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

type adminUserPayload struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

func (p adminUserPayload) toInput() service.AdminUserInput {
	return service.AdminUserInput{
		Email:    p.Email,
		Name:     p.Name,
		Password: p.Password,
		Role:     p.Role,
		IsActive: p.IsActive,
	}
}

func adminUserPayloadView(admin *models.AdminUser, roles []string) gin.H {
	return gin.H{
		"id":            admin.ID,
		"email":         admin.Email,
		"name":          admin.Name,
		"role":          admin.Role,
		"is_active":     admin.IsActive,
		"last_login_at": admin.LastLoginAt,
		"created_at":    admin.CreatedAt,
		"roles":         roles,
	}
}

func (h *Handler) respondAdminMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
	case errors.Is(err, service.ErrEmailExists):
		respondError(c, response.CodeBadRequest, "error.admin_exists", nil)
	case errors.Is(err, service.ErrAdminRoleInvalid):
		respondError(c, response.CodeBadRequest, "error.admin_role_invalid", nil)
	case errors.Is(err, service.ErrLastSuperAdmin):
		respondError(c, response.CodeBadRequest, "error.admin_self_forbidden", nil)
	case errors.Is(err, service.ErrWeakPassword):
		h.respondWeakPassword(c, err)
	default:
		respondError(c, response.CodeInternal, "error.internal", err)
	}
}

// ListAuthzAdmins 获取管理员账号列表（含扩展角色）
func (h *Handler) ListAuthzAdmins(c *gin.Context) {
	admins, err := h.AdminUserService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}

	payload := make([]gin.H, 0, len(admins))
	for i := range admins {
		roles, err := h.AuthzService.GetAdminRoles(admins[i].ID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.authz_failed", err)
			return
		}
		payload = append(payload, adminUserPayloadView(&admins[i], roles))
	}
	response.Success(c, payload)
}

// CreateAuthzAdmin 创建管理员账号
func (h *Handler) CreateAuthzAdmin(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req adminUserPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AdminUserService.Create(req.toInput(), operator, adminMeta(c))
	if err != nil {
		h.respondAdminMutationError(c, err)
		return
	}
	response.Success(c, adminUserPayloadView(admin, nil))
}

// UpdateAuthzAdmin 更新管理员账号
func (h *Handler) UpdateAuthzAdmin(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req adminUserPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, err := h.AdminUserService.Update(id, req.toInput(), operator, adminMeta(c))
	if err != nil {
		h.respondAdminMutationError(c, err)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(admin.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, adminUserPayloadView(admin, roles))
}

// DeleteAuthzAdmin 删除管理员账号
func (h *Handler) DeleteAuthzAdmin(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.AdminUserService.Delete(id, operator, adminMeta(c)); err != nil {
		h.respondAdminMutationError(c, err)
		return
	}
	response.Success(c, nil)
}
