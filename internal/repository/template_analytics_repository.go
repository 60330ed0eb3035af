package repository

import (
	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TemplateAnalyticsRepository 模板每日统计数据访问接口
// 说明：写路径全部走 (模板, 日期) upsert 累加，读路径按日期范围聚合。
type TemplateAnalyticsRepository interface {
	IncrementViews(templateID uint, day string, delta int64) error
	IncrementDownloads(templateID uint, day string, delta int64) error
	AddPurchase(templateID uint, day string, revenue models.Money) error
	ListByTemplate(templateID uint, fromDay, toDay string) ([]models.TemplateAnalytics, error)
	ListRange(fromDay, toDay string) ([]models.TemplateAnalytics, error)
	TopByRevenue(fromDay, toDay string, limit int) ([]TemplateRankingRow, error)
	WithTx(tx *gorm.DB) *GormTemplateAnalyticsRepository
}

// TemplateRankingRow 模板排行聚合结果
type TemplateRankingRow struct {
	TemplateID uint
	Views      int64
	Downloads  int64
	Purchases  int64
	Revenue    float64
}

// GormTemplateAnalyticsRepository GORM 实现
type GormTemplateAnalyticsRepository struct {
	db *gorm.DB
}

// NewTemplateAnalyticsRepository 创建模板统计仓库
func NewTemplateAnalyticsRepository(db *gorm.DB) *GormTemplateAnalyticsRepository {
	return &GormTemplateAnalyticsRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTemplateAnalyticsRepository) WithTx(tx *gorm.DB) *GormTemplateAnalyticsRepository {
	if tx == nil {
		return r
	}
	return &GormTemplateAnalyticsRepository{db: tx}
}

// IncrementViews 浏览计数 upsert 累加
func (r *GormTemplateAnalyticsRepository) IncrementViews(templateID uint, day string, delta int64) error {
	if templateID == 0 || day == "" || delta <= 0 {
		return nil
	}
	row := models.TemplateAnalytics{TemplateID: templateID, Day: day, Views: delta}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "template_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"views": gorm.Expr("views + ?", delta),
		}),
	}).Create(&row).Error
}

// IncrementDownloads 下载计数 upsert 累加
func (r *GormTemplateAnalyticsRepository) IncrementDownloads(templateID uint, day string, delta int64) error {
	if templateID == 0 || day == "" || delta <= 0 {
		return nil
	}
	row := models.TemplateAnalytics{TemplateID: templateID, Day: day, Downloads: delta}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "template_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"downloads": gorm.Expr("downloads + ?", delta),
		}),
	}).Create(&row).Error
}

// AddPurchase 成交计数与成交金额 upsert 累加
func (r *GormTemplateAnalyticsRepository) AddPurchase(templateID uint, day string, revenue models.Money) error {
	if templateID == 0 || day == "" {
		return nil
	}
	row := models.TemplateAnalytics{TemplateID: templateID, Day: day, Purchases: 1, Revenue: revenue}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "template_id"}, {Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"purchases": gorm.Expr("purchases + 1"),
			"revenue":   gorm.Expr("revenue + ?", revenue),
		}),
	}).Create(&row).Error
}

// ListByTemplate 查询单模板的日期范围统计
func (r *GormTemplateAnalyticsRepository) ListByTemplate(templateID uint, fromDay, toDay string) ([]models.TemplateAnalytics, error) {
	rows := make([]models.TemplateAnalytics, 0)
	err := r.db.Where("template_id = ? AND day >= ? AND day <= ?", templateID, fromDay, toDay).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListRange 查询全量日期范围统计
func (r *GormTemplateAnalyticsRepository) ListRange(fromDay, toDay string) ([]models.TemplateAnalytics, error) {
	rows := make([]models.TemplateAnalytics, 0)
	err := r.db.Where("day >= ? AND day <= ?", fromDay, toDay).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopByRevenue 按成交金额排序的模板排行
func (r *GormTemplateAnalyticsRepository) TopByRevenue(fromDay, toDay string, limit int) ([]TemplateRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows := make([]TemplateRankingRow, 0, limit)
	err := r.db.Model(&models.TemplateAnalytics{}).
		Select("template_id",
			"SUM(views) AS views",
			"SUM(downloads) AS downloads",
			"SUM(purchases) AS purchases",
			"SUM(revenue) AS revenue").
		Where("day >= ? AND day <= ?", fromDay, toDay).
		Group("template_id").
		Order("revenue DESC, purchases DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
