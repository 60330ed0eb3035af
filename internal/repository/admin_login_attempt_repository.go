package repository

import (
	"time"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// AdminLoginAttemptRepository 管理员登录尝试数据访问接口
// 说明：只追加与查询，不提供更新与删除。
type AdminLoginAttemptRepository interface {
	Create(attempt *models.AdminLoginAttempt) error
	List(filter AdminLoginAttemptListFilter) ([]models.AdminLoginAttempt, int64, error)
	CountFailedSince(email string, since time.Time) (int64, error)
}

// GormAdminLoginAttemptRepository GORM 实现
type GormAdminLoginAttemptRepository struct {
	db *gorm.DB
}

// NewAdminLoginAttemptRepository 创建管理员登录尝试仓库
func NewAdminLoginAttemptRepository(db *gorm.DB) *GormAdminLoginAttemptRepository {
	return &GormAdminLoginAttemptRepository{db: db}
}

// Create 追加登录尝试记录
func (r *GormAdminLoginAttemptRepository) Create(attempt *models.AdminLoginAttempt) error {
	if attempt == nil {
		return nil
	}
	return r.db.Create(attempt).Error
}

// List 查询登录尝试列表
func (r *GormAdminLoginAttemptRepository) List(filter AdminLoginAttemptListFilter) ([]models.AdminLoginAttempt, int64, error) {
	query := r.db.Model(&models.AdminLoginAttempt{})
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}
	if filter.FailReason != "" {
		query = query.Where("fail_reason = ?", filter.FailReason)
	}
	if filter.ClientIP != "" {
		query = query.Where("client_ip = ?", filter.ClientIP)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var attempts []models.AdminLoginAttempt
	if err := query.Order("id desc").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// CountFailedSince 统计某邮箱自指定时间以来的失败次数
func (r *GormAdminLoginAttemptRepository) CountFailedSince(email string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AdminLoginAttempt{}).
		Where("email = ? AND success = ? AND created_at >= ?", email, false, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
