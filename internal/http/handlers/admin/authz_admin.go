package admin

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

type authzRolePayload struct {
	Role string `json:"role" binding:"required"`
}

type authzPolicyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

type authzSetAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

func decodeRoleParam(raw string) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func (h *Handler) recordAuthzAudit(c *gin.Context, operator *models.AdminUser, action string, detail models.JSON) {
	if h.AdminAuditService == nil || operator == nil {
		return
	}
	meta := adminMeta(c)
	h.AdminAuditService.RecordQuiet(service.AdminAuditRecordInput{
		AdminID:      operator.ID,
		AdminEmail:   operator.Email,
		Action:       action,
		ResourceType: constants.AuditResourceAuthz,
		Outcome:      constants.AdminAuditOutcomeSuccess,
		Detail:       detail,
		ClientIP:     meta.ClientIP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
	})
}

// GetAuthzMe 获取当前管理员权限快照
func (h *Handler) GetAuthzMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}

	response.Success(c, gin.H{
		"admin_id": adminID,
		"role":     c.GetString("admin_role"),
		"is_super": c.GetString("admin_role") == constants.AdminRoleSuperAdmin,
		"roles":    roles,
		"policies": policies,
	})
}

// ListAuthzRoles 获取角色列表
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// CreateAuthzRole 创建角色
func (h *Handler) CreateAuthzRole(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req authzRolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, operator, "role_create", models.JSON{"role": role})
	response.Success(c, gin.H{"role": role})
}

// DeleteAuthzRole 删除角色及其全部策略
func (h *Handler) DeleteAuthzRole(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, operator, "role_delete", models.JSON{"role": role})
	response.Success(c, nil)
}

// GetAuthzRolePolicies 获取角色策略
func (h *Handler) GetAuthzRolePolicies(c *gin.Context) {
	role := decodeRoleParam(c.Param("role"))
	if strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	policies, err := h.AuthzService.GetRolePolicies(role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	response.Success(c, policies)
}

// GrantAuthzPolicy 授予角色策略
func (h *Handler) GrantAuthzPolicy(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, operator, "policy_grant", models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	response.Success(c, nil)
}

// RevokeAuthzPolicy 撤销角色策略
func (h *Handler) RevokeAuthzPolicy(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	var req authzPolicyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, operator, "policy_revoke", models.JSON{
		"role":   req.Role,
		"object": req.Object,
		"method": strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	response.Success(c, nil)
}

// GetAuthzAdminRoles 获取指定管理员的角色
func (h *Handler) GetAuthzAdminRoles(c *gin.Context) {
	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.AdminUserService.Get(adminID); err != nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_failed", err)
		return
	}
	response.Success(c, roles)
}

// SetAuthzAdminRoles 覆盖设置指定管理员的角色
func (h *Handler) SetAuthzAdminRoles(c *gin.Context) {
	operator, ok := h.currentAdmin(c)
	if !ok {
		return
	}

	adminID, ok := parseIDParam(c)
	if !ok {
		return
	}

	target, err := h.AdminUserService.Get(adminID)
	if err != nil {
		respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		return
	}

	var req authzSetAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AuthzService.SetAdminRoles(adminID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	h.recordAuthzAudit(c, operator, "admin_roles_update", models.JSON{
		"target_admin_id": strconv.FormatUint(uint64(target.ID), 10),
		"target_email":    target.Email,
		"roles":           req.Roles,
	})
	response.Success(c, nil)
}
