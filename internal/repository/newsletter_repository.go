package repository

import (
	"errors"
	"strings"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// NewsletterRepository 邮件订阅数据访问接口
type NewsletterRepository interface {
	GetByID(id uint) (*models.NewsletterSubscriber, error)
	GetByEmail(email string) (*models.NewsletterSubscriber, error)
	GetByConfirmToken(token string) (*models.NewsletterSubscriber, error)
	Create(subscriber *models.NewsletterSubscriber) error
	Update(subscriber *models.NewsletterSubscriber) error
	List(filter NewsletterListFilter) ([]models.NewsletterSubscriber, int64, error)
	CountByStatus(status string) (int64, error)
	Delete(id uint) error
}

// GormNewsletterRepository GORM 实现
type GormNewsletterRepository struct {
	db *gorm.DB
}

// NewNewsletterRepository 创建邮件订阅仓库
func NewNewsletterRepository(db *gorm.DB) *GormNewsletterRepository {
	return &GormNewsletterRepository{db: db}
}

// GetByID 根据 ID 获取订阅记录
func (r *GormNewsletterRepository) GetByID(id uint) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.First(&subscriber, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// GetByEmail 根据邮箱获取订阅记录
func (r *GormNewsletterRepository) GetByEmail(email string) (*models.NewsletterSubscriber, error) {
	var subscriber models.NewsletterSubscriber
	if err := r.db.Where("email = ?", email).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// GetByConfirmToken 根据确认令牌获取订阅记录
func (r *GormNewsletterRepository) GetByConfirmToken(token string) (*models.NewsletterSubscriber, error) {
	if token == "" {
		return nil, nil
	}
	var subscriber models.NewsletterSubscriber
	if err := r.db.Where("confirm_token = ?", token).First(&subscriber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscriber, nil
}

// Create 创建订阅记录
func (r *GormNewsletterRepository) Create(subscriber *models.NewsletterSubscriber) error {
	return r.db.Create(subscriber).Error
}

// Update 更新订阅记录
func (r *GormNewsletterRepository) Update(subscriber *models.NewsletterSubscriber) error {
	return r.db.Save(subscriber).Error
}

// List 管理端查询订阅列表
func (r *GormNewsletterRepository) List(filter NewsletterListFilter) ([]models.NewsletterSubscriber, int64, error) {
	query := r.db.Model(&models.NewsletterSubscriber{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("email LIKE ?", "%"+search+"%")
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

	var subscribers []models.NewsletterSubscriber
	if err := query.Order("id desc").Find(&subscribers).Error; err != nil {
		return nil, 0, err
	}
	return subscribers, total, nil
}

// CountByStatus 按状态统计订阅数量
func (r *GormNewsletterRepository) CountByStatus(status string) (int64, error) {
	query := r.db.Model(&models.NewsletterSubscriber{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 删除订阅记录
func (r *GormNewsletterRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.NewsletterSubscriber{}, id).Error
}
