package models

import (
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(email, password string) error {
	var count int64
	DB.Model(&AdminUser{}).Count(&count)

	// 如果已有管理员，确保至少存在一个超级管理员
	if count > 0 {
		var superCount int64
		DB.Model(&AdminUser{}).Where("role = ?", constants.AdminRoleSuperAdmin).Count(&superCount)
		if superCount == 0 {
			if err := DB.Model(&AdminUser{}).Where("email = ?", "admin@pagespark.dev").
				Update("role", constants.AdminRoleSuperAdmin).Error; err != nil {
				logger.Warnw("ensure_default_admin_super_failed", "error", err)
			}
		}
		return nil
	}

	// 创建默认管理员
	if email == "" {
		email = "admin@pagespark.dev"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := AdminUser{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: string(hash),
		Role:         constants.AdminRoleSuperAdmin,
		IsActive:     true,
	}

	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "email", email, "password", password)
		logger.Warnw("default_admin_password_change_required", "email", email)
	} else {
		logger.Warnw("default_admin_created", "email", email, "password_hidden", true)
	}

	return nil
}
