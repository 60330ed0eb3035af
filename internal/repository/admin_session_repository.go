package repository

import (
	"errors"
	"time"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// AdminSessionRepository 管理员会话数据访问接口
type AdminSessionRepository interface {
	Create(session *models.AdminSession) error
	GetByToken(token string) (*models.AdminSession, error)
	Revoke(token string, at time.Time) error
	RevokeAllByAdmin(adminID uint, at time.Time) error
	CountActiveByAdmin(adminID uint, now time.Time) (int64, error)
	CountByAdmin(adminID uint) (int64, error)
	List(filter AdminSessionListFilter) ([]models.AdminSession, int64, error)
	DeleteExpiredBefore(cutoff time.Time) (int64, error)
}

// GormAdminSessionRepository GORM 实现
type GormAdminSessionRepository struct {
	db *gorm.DB
}

// NewAdminSessionRepository 创建管理员会话仓库
func NewAdminSessionRepository(db *gorm.DB) *GormAdminSessionRepository {
	return &GormAdminSessionRepository{db: db}
}

// Create 创建会话
func (r *GormAdminSessionRepository) Create(session *models.AdminSession) error {
	return r.db.Create(session).Error
}

// GetByToken 根据令牌获取会话
func (r *GormAdminSessionRepository) GetByToken(token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, nil
	}
	var session models.AdminSession
	if err := r.db.Where("token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Revoke 撤销单个会话（登出）
func (r *GormAdminSessionRepository) Revoke(token string, at time.Time) error {
	if token == "" {
		return nil
	}
	return r.db.Model(&models.AdminSession{}).
		Where("token = ? AND revoked_at IS NULL", token).
		Update("revoked_at", at).Error
}

// RevokeAllByAdmin 撤销某管理员的全部会话（停用、改密时调用）
func (r *GormAdminSessionRepository) RevokeAllByAdmin(adminID uint, at time.Time) error {
	if adminID == 0 {
		return nil
	}
	return r.db.Model(&models.AdminSession{}).
		Where("admin_id = ? AND revoked_at IS NULL", adminID).
		Update("revoked_at", at).Error
}

// CountActiveByAdmin 统计某管理员当前有效会话数量
func (r *GormAdminSessionRepository) CountActiveByAdmin(adminID uint, now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AdminSession{}).
		Where("admin_id = ? AND revoked_at IS NULL AND expires_at > ?", adminID, now).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// CountByAdmin 统计某管理员全部会话数量
func (r *GormAdminSessionRepository) CountByAdmin(adminID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AdminSession{}).
		Where("admin_id = ?", adminID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List 查询会话列表
func (r *GormAdminSessionRepository) List(filter AdminSessionListFilter) ([]models.AdminSession, int64, error) {
	query := r.db.Model(&models.AdminSession{})
	if filter.AdminID != 0 {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.ActiveOnly {
		query = query.Where("revoked_at IS NULL AND expires_at > ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var sessions []models.AdminSession
	if err := query.Order("id desc").Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// DeleteExpiredBefore 物理删除指定时间点前已过期或已撤销的会话
func (r *GormAdminSessionRepository) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&models.AdminSession{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
