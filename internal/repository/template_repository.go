package repository

import (
	"errors"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// TemplateRepository 模板数据访问接口
type TemplateRepository interface {
	GetByID(id uint) (*models.Template, error)
	GetBySlug(slug string) (*models.Template, error)
	List(filter TemplateListFilter) ([]models.Template, int64, error)
	ListFeatured(limit int) ([]models.Template, error)
	Create(template *models.Template) error
	Update(template *models.Template) error
	UpdateStatus(id uint, from, to string) (bool, error)
	Delete(id uint) error
	CountByStatus(status string) (int64, error)
}

// GormTemplateRepository GORM 实现
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建模板仓库
func NewTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// GetByID 根据 ID 获取模板（带分类）
func (r *GormTemplateRepository) GetByID(id uint) (*models.Template, error) {
	var template models.Template
	if err := r.db.Preload("Category").First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetBySlug 根据 slug 获取模板（带分类）
func (r *GormTemplateRepository) GetBySlug(slug string) (*models.Template, error) {
	var template models.Template
	if err := r.db.Preload("Category").Where("slug = ?", slug).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// List 查询模板列表
func (r *GormTemplateRepository) List(filter TemplateListFilter) ([]models.Template, int64, error) {
	query := r.db.Model(&models.Template{})
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Framework != "" {
		query = query.Where("framework = ?", filter.Framework)
	}
	if filter.LiveOnly {
		query = query.Where("status = ?", constants.TemplateStatusLive)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLocalizedLikeCondition(r.db,
			[]string{"slug"},
			[]string{"title_json", "description_json"},
		)
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if filter.WithCategory {
		query = query.Preload("Category")
	}

	orderBy := "sort_order ASC, id DESC"
	if filter.OrderBy == "newest" {
		orderBy = "id DESC"
	}

	var templates []models.Template
	if err := query.Order(orderBy).Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

// ListFeatured 获取精选上线模板
func (r *GormTemplateRepository) ListFeatured(limit int) ([]models.Template, error) {
	if limit <= 0 {
		limit = 6
	}
	templates := make([]models.Template, 0, limit)
	err := r.db.Preload("Category").
		Where("status = ? AND is_featured = ?", constants.TemplateStatusLive, true).
		Order("sort_order ASC, id DESC").
		Limit(limit).
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	return templates, nil
}

// Create 创建模板
func (r *GormTemplateRepository) Create(template *models.Template) error {
	return r.db.Create(template).Error
}

// Update 更新模板
func (r *GormTemplateRepository) Update(template *models.Template) error {
	return r.db.Save(template).Error
}

// UpdateStatus 条件状态迁移，返回是否迁移成功
// 说明：带 from 条件的原子更新，防止并发下的非法状态跳转。
func (r *GormTemplateRepository) UpdateStatus(id uint, from, to string) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if to == constants.TemplateStatusLive {
		updates["deployed_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	}
	result := r.db.Model(&models.Template{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete 删除模板（软删除）
func (r *GormTemplateRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Template{}, id).Error
}

// CountByStatus 按状态统计模板数量
func (r *GormTemplateRepository) CountByStatus(status string) (int64, error) {
	query := r.db.Model(&models.Template{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
