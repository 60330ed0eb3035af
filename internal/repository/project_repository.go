package repository

import (
	"errors"
	"strings"

	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	Create(project *models.Project) error
	Update(project *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetBySubdomain(subdomain string) (*models.Project, error)
	ListByUser(userID uint, page, pageSize int) ([]models.Project, int64, error)
	ListAdmin(filter ProjectListFilter) ([]models.Project, int64, error)
	UpdateStatus(id uint, from, to string) (bool, error)
	CountByUser(userID uint) (int64, error)
	Delete(id uint) error
}

// GormProjectRepository GORM 实现
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓库
func NewProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create 创建项目
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// Update 更新项目
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// GetByID 根据 ID 获取项目
func (r *GormProjectRepository) GetByID(id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.Preload("Template").First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// GetBySubdomain 根据子域名获取项目
func (r *GormProjectRepository) GetBySubdomain(subdomain string) (*models.Project, error) {
	var project models.Project
	if err := r.db.Where("subdomain = ?", subdomain).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

// ListByUser 查询用户的项目列表
func (r *GormProjectRepository) ListByUser(userID uint, page, pageSize int) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	err := applyPagination(query, page, pageSize).
		Preload("Template").
		Order("id desc").
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// ListAdmin 管理端查询项目列表
func (r *GormProjectRepository) ListAdmin(filter ProjectListFilter) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.TemplateID != 0 {
		query = query.Where("template_id = ?", filter.TemplateID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR subdomain LIKE ?", like, like)
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

	var projects []models.Project
	if err := query.Order("id desc").Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// UpdateStatus 条件状态迁移，返回是否迁移成功
func (r *GormProjectRepository) UpdateStatus(id uint, from, to string) (bool, error) {
	result := r.db.Model(&models.Project{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByUser 统计用户项目数量
func (r *GormProjectRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete 删除项目（软删除）
func (r *GormProjectRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Project{}, id).Error
}
