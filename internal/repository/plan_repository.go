package repository

import (
	"errors"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// PlanRepository 订阅计划数据访问接口
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetByCode(code string) (*models.Plan, error)
	List(filter PlanListFilter) ([]models.Plan, int64, error)
	ListActive() ([]models.Plan, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id uint) error
	CountSubscriptions(planID uint) (int64, error)
}

// GormPlanRepository GORM 实现
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建订阅计划仓库
func NewPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// GetByID 根据 ID 获取计划
func (r *GormPlanRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// GetByCode 根据 code 获取计划
func (r *GormPlanRepository) GetByCode(code string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.Where("code = ?", code).First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// List 管理端查询计划列表
func (r *GormPlanRepository) List(filter PlanListFilter) ([]models.Plan, int64, error) {
	query := r.db.Model(&models.Plan{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var plans []models.Plan
	if err := query.Order("sort_order ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}

// ListActive 获取启用的计划（定价页）
func (r *GormPlanRepository) ListActive() ([]models.Plan, error) {
	plans := make([]models.Plan, 0)
	err := r.db.Where("is_active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Create 创建计划
func (r *GormPlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Update 更新计划
func (r *GormPlanRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete 删除计划（软删除）
func (r *GormPlanRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Plan{}, id).Error
}

// CountSubscriptions 统计计划下的订阅数量
func (r *GormPlanRepository) CountSubscriptions(planID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Subscription{}).
		Where("plan_id = ?", planID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
