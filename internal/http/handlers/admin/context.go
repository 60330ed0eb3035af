package admin

import (
	handlershared "github.com/pagespark/pagespark/internal/http/handlers/shared"
	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/models"

	"github.com/gin-gonic/gin"
)

func getContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, key, invalidKey, typeInvalidKey)
}

func getAdminID(c *gin.Context) (uint, bool) {
	return getContextUintWithKeys(c, "admin_id", "error.admin_id_invalid", "error.admin_id_type_invalid")
}

// currentAdmin 获取当前操作管理员，用于审计归属。
func (h *Handler) currentAdmin(c *gin.Context) (*models.AdminUser, bool) {
	adminID, ok := getAdminID(c)
	if !ok {
		return nil, false
	}
	admin, err := h.AdminUserService.Get(adminID)
	if err != nil {
		respondError(c, response.CodeUnauthorized, "error.token_invalid", err)
		return nil, false
	}
	return admin, true
}
