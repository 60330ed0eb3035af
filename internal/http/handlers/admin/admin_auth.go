package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest 登录请求
type AdminLoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

func adminMeta(c *gin.Context) service.AdminLoginInput {
	return service.AdminLoginInput{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString("request_id"),
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func adminProfile(admin *models.AdminUser) gin.H {
	return gin.H{
		"id":            admin.ID,
		"email":         admin.Email,
		"name":          admin.Name,
		"role":          admin.Role,
		"is_active":     admin.IsActive,
		"last_login_at": admin.LastLoginAt,
	}
}

// AdminLogin 管理员登录，下发数据库会话令牌
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneAdminLogin, req.CaptchaPayload.ToServicePayload()); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "error.captcha_required", nil)
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "error.captcha_invalid", nil)
			case errors.Is(captchaErr, service.ErrCaptchaConfigInvalid):
				respondError(c, response.CodeInternal, "error.captcha_config_invalid", captchaErr)
			default:
				respondError(c, response.CodeInternal, "error.captcha_verify_failed", captchaErr)
			}
			return
		}
	}

	input := adminMeta(c)
	input.Email = req.Email
	input.Password = req.Password

	result, err := h.AdminAuthService.Login(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "error.admin_login_invalid", nil)
		case errors.Is(err, service.ErrAccountInactive):
			respondError(c, response.CodeUnauthorized, "error.admin_inactive", nil)
		default:
			respondError(c, response.CodeInternal, "error.login_failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"token":      result.Token,
		"admin":      adminProfile(result.Admin),
		"expires_at": result.ExpiresAt.Format(time.RFC3339),
	})
}

// AdminVerify 校验当前会话并返回管理员信息
// 会话本身已由中间件校验，这里只回显身份。
func (h *Handler) AdminVerify(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	admin, err := h.AdminUserService.Get(adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeUnauthorized, "error.token_invalid", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}

	response.Success(c, gin.H{
		"admin":      adminProfile(admin),
		"session_id": c.GetUint("admin_session_id"),
	})
}

// AdminLogout 吊销当前会话
func (h *Handler) AdminLogout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		respondError(c, response.CodeUnauthorized, "error.auth_header_missing", nil)
		return
	}

	if err := h.AdminAuthService.Logout(c.Request.Context(), token, adminMeta(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			respondError(c, response.CodeUnauthorized, "error.session_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.logout_failed", err)
		}
		return
	}

	response.Success(c, gin.H{"logout": true})
}

// UpdateAdminPasswordRequest 修改密码请求
type UpdateAdminPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改当前管理员密码，其余会话全部吊销
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdateAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if err := h.AdminAuthService.ChangePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword, adminMeta(c)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPassword):
			respondError(c, response.CodeBadRequest, "error.password_old_invalid", nil)
		case errors.Is(err, service.ErrWeakPassword):
			h.respondWeakPassword(c, err)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.save_failed", err)
		}
		return
	}

	response.Success(c, nil)
}
