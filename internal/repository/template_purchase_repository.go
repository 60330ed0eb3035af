package repository

import (
	"errors"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// TemplatePurchaseRepository 模板购买记录数据访问接口
type TemplatePurchaseRepository interface {
	Create(purchase *models.TemplatePurchase) error
	GetByUserAndTemplate(userID, templateID uint) (*models.TemplatePurchase, error)
	ListByUser(userID uint, page, pageSize int) ([]models.TemplatePurchase, int64, error)
	List(filter TemplatePurchaseListFilter) ([]models.TemplatePurchase, int64, error)
	WithTx(tx *gorm.DB) *GormTemplatePurchaseRepository
}

// GormTemplatePurchaseRepository GORM 实现
type GormTemplatePurchaseRepository struct {
	db *gorm.DB
}

// NewTemplatePurchaseRepository 创建模板购买记录仓库
func NewTemplatePurchaseRepository(db *gorm.DB) *GormTemplatePurchaseRepository {
	return &GormTemplatePurchaseRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTemplatePurchaseRepository) WithTx(tx *gorm.DB) *GormTemplatePurchaseRepository {
	if tx == nil {
		return r
	}
	return &GormTemplatePurchaseRepository{db: tx}
}

// Create 创建购买记录
func (r *GormTemplatePurchaseRepository) Create(purchase *models.TemplatePurchase) error {
	return r.db.Create(purchase).Error
}

// GetByUserAndTemplate 查询用户对指定模板的购买记录
func (r *GormTemplatePurchaseRepository) GetByUserAndTemplate(userID, templateID uint) (*models.TemplatePurchase, error) {
	var purchase models.TemplatePurchase
	err := r.db.Where("user_id = ? AND template_id = ?", userID, templateID).First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &purchase, nil
}

// ListByUser 查询用户的购买记录（带模板）
func (r *GormTemplatePurchaseRepository) ListByUser(userID uint, page, pageSize int) ([]models.TemplatePurchase, int64, error) {
	query := r.db.Model(&models.TemplatePurchase{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []models.TemplatePurchase
	err := applyPagination(query, page, pageSize).
		Preload("Template").
		Order("id desc").
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

// List 管理端查询购买记录
func (r *GormTemplatePurchaseRepository) List(filter TemplatePurchaseListFilter) ([]models.TemplatePurchase, int64, error) {
	query := r.db.Model(&models.TemplatePurchase{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.TemplateID != 0 {
		query = query.Where("template_id = ?", filter.TemplateID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var purchases []models.TemplatePurchase
	if err := query.Order("id desc").Find(&purchases).Error; err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}
