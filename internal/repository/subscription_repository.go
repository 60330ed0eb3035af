package repository

import (
	"errors"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository 订阅数据访问接口
type SubscriptionRepository interface {
	Create(subscription *models.Subscription) error
	Update(subscription *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetActiveByUser(userID uint, now time.Time) (*models.Subscription, error)
	GetByProviderRef(providerRef string) (*models.Subscription, error)
	ListAdmin(filter SubscriptionListFilter) ([]models.Subscription, int64, error)
	CountByStatus(status string) (int64, error)
	WithTx(tx *gorm.DB) *GormSubscriptionRepository
}

// GormSubscriptionRepository GORM 实现
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository 创建订阅仓库
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSubscriptionRepository) WithTx(tx *gorm.DB) *GormSubscriptionRepository {
	if tx == nil {
		return r
	}
	return &GormSubscriptionRepository{db: tx}
}

// Create 创建订阅
func (r *GormSubscriptionRepository) Create(subscription *models.Subscription) error {
	return r.db.Create(subscription).Error
}

// Update 更新订阅
func (r *GormSubscriptionRepository) Update(subscription *models.Subscription) error {
	return r.db.Save(subscription).Error
}

// GetByID 根据 ID 获取订阅（带计划）
func (r *GormSubscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var subscription models.Subscription
	if err := r.db.Preload("Plan").First(&subscription, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// GetActiveByUser 获取用户当前有效订阅
func (r *GormSubscriptionRepository) GetActiveByUser(userID uint, now time.Time) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status = ?", userID, constants.SubscriptionStatusActive).
		Where("current_period_end IS NULL OR current_period_end > ?", now).
		Order("id desc").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// GetByProviderRef 根据第三方订阅标识获取订阅
func (r *GormSubscriptionRepository) GetByProviderRef(providerRef string) (*models.Subscription, error) {
	if providerRef == "" {
		return nil, nil
	}
	var subscription models.Subscription
	if err := r.db.Where("provider_ref = ?", providerRef).Order("id desc").First(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

// ListAdmin 管理端查询订阅列表
func (r *GormSubscriptionRepository) ListAdmin(filter SubscriptionListFilter) ([]models.Subscription, int64, error) {
	query := r.db.Model(&models.Subscription{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PlanID != 0 {
		query = query.Where("plan_id = ?", filter.PlanID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ProviderType != "" {
		query = query.Where("provider_type = ?", filter.ProviderType)
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

	var subscriptions []models.Subscription
	if err := query.Preload("Plan").Order("id desc").Find(&subscriptions).Error; err != nil {
		return nil, 0, err
	}
	return subscriptions, total, nil
}

// CountByStatus 按状态统计订阅数量
func (r *GormSubscriptionRepository) CountByStatus(status string) (int64, error) {
	query := r.db.Model(&models.Subscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
