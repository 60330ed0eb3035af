package repository

import (
	"fmt"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetPaymentTrends(startAt, endAt time.Time) ([]DashboardPaymentTrendRow, error)
	GetAnalyticsTrends(fromDay, toDay string) ([]DashboardAnalyticsTrendRow, error)
	GetTopTemplates(fromDay, toDay string, limit int) ([]DashboardTemplateRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	UsersTotal           int64
	NewUsers             int64
	LiveTemplates        int64
	TotalTemplates       int64
	ProjectsTotal        int64
	PublishedProjects    int64
	ConfirmedSubscribers int64
	ActiveSubscriptions  int64
	PaymentsTotal        int64
	PaymentsSuccess      int64
	PaymentsFailed       int64
	GMVPaid              float64
	Currency             string
}

// DashboardPaymentTrendRow 支付趋势统计
type DashboardPaymentTrendRow struct {
	Day             string
	PaymentsSuccess int64
	PaymentsFailed  int64
	GMVPaid         float64
}

// DashboardAnalyticsTrendRow 模板统计趋势
type DashboardAnalyticsTrendRow struct {
	Day       string
	Views     int64
	Downloads int64
	Purchases int64
	Revenue   float64
}

// DashboardTemplateRankingRow 模板排行榜
type DashboardTemplateRankingRow struct {
	TemplateID uint
	Slug       string
	Title      string
	Views      int64
	Downloads  int64
	Purchases  int64
	Revenue    float64
}

// GormDashboardRepository GORM 实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

func paymentBase(db *gorm.DB, startAt, endAt time.Time) *gorm.DB {
	return db.Model(&models.Payment{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt)
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	if err := r.db.Model(&models.User{}).Count(&result.UsersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Template{}).Count(&result.TotalTemplates).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Template{}).
		Where("status = ?", constants.TemplateStatusLive).
		Count(&result.LiveTemplates).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Project{}).Count(&result.ProjectsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Project{}).
		Where("status = ?", constants.ProjectStatusPublished).
		Count(&result.PublishedProjects).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.NewsletterSubscriber{}).
		Where("status = ?", constants.NewsletterStatusConfirmed).
		Count(&result.ConfirmedSubscribers).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Subscription{}).
		Where("status = ?", constants.SubscriptionStatusActive).
		Count(&result.ActiveSubscriptions).Error; err != nil {
		return result, err
	}

	if err := paymentBase(r.db, startAt, endAt).Count(&result.PaymentsTotal).Error; err != nil {
		return result, err
	}
	if err := paymentBase(r.db, startAt, endAt).
		Where("status = ?", constants.PaymentStatusSuccess).
		Count(&result.PaymentsSuccess).Error; err != nil {
		return result, err
	}
	if err := paymentBase(r.db, startAt, endAt).
		Where("status = ?", constants.PaymentStatusFailed).
		Count(&result.PaymentsFailed).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.Payment{}).
		Where("paid_at IS NOT NULL AND paid_at >= ? AND paid_at < ? AND status = ?", startAt, endAt, constants.PaymentStatusSuccess).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&result.GMVPaid).Error; err != nil {
		return result, err
	}

	result.Currency = constants.SiteCurrencyDefault
	_ = r.db.Model(&models.Payment{}).
		Where("created_at >= ? AND created_at < ? AND currency <> ''", startAt, endAt).
		Order("id DESC").
		Limit(1).
		Pluck("currency", &result.Currency).Error

	return result, nil
}

// GetPaymentTrends 获取支付趋势
func (r *GormDashboardRepository) GetPaymentTrends(startAt, endAt time.Time) ([]DashboardPaymentTrendRow, error) {
	type countRow struct {
		Day   string
		Total int64
	}
	type amountRow struct {
		Day   string
		Total float64
	}

	dayExpr := "CAST(date(created_at) AS TEXT)"

	var successRows []countRow
	if err := paymentBase(r.db, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusSuccess).
		Group(dayExpr).
		Order("day asc").
		Scan(&successRows).Error; err != nil {
		return nil, err
	}

	var failedRows []countRow
	if err := paymentBase(r.db, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COUNT(*) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusFailed).
		Group(dayExpr).
		Order("day asc").
		Scan(&failedRows).Error; err != nil {
		return nil, err
	}

	var amountRows []amountRow
	if err := paymentBase(r.db, startAt, endAt).
		Select(fmt.Sprintf("%s as day, COALESCE(SUM(amount), 0) as total", dayExpr)).
		Where("status = ?", constants.PaymentStatusSuccess).
		Group(dayExpr).
		Order("day asc").
		Scan(&amountRows).Error; err != nil {
		return nil, err
	}

	successMap := make(map[string]int64, len(successRows))
	for _, item := range successRows {
		successMap[item.Day] = item.Total
	}
	failedMap := make(map[string]int64, len(failedRows))
	for _, item := range failedRows {
		failedMap[item.Day] = item.Total
	}
	amountMap := make(map[string]float64, len(amountRows))
	for _, item := range amountRows {
		amountMap[item.Day] = item.Total
	}

	seen := make(map[string]struct{}, len(successRows)+len(failedRows)+len(amountRows))
	result := make([]DashboardPaymentTrendRow, 0)
	push := func(day string) {
		if day == "" {
			return
		}
		if _, ok := seen[day]; ok {
			return
		}
		seen[day] = struct{}{}
		result = append(result, DashboardPaymentTrendRow{
			Day:             day,
			PaymentsSuccess: successMap[day],
			PaymentsFailed:  failedMap[day],
			GMVPaid:         amountMap[day],
		})
	}
	for _, item := range successRows {
		push(item.Day)
	}
	for _, item := range failedRows {
		push(item.Day)
	}
	for _, item := range amountRows {
		push(item.Day)
	}

	return result, nil
}

// GetAnalyticsTrends 获取模板统计趋势（浏览/下载/成交）
func (r *GormDashboardRepository) GetAnalyticsTrends(fromDay, toDay string) ([]DashboardAnalyticsTrendRow, error) {
	rows := make([]DashboardAnalyticsTrendRow, 0)
	err := r.db.Model(&models.TemplateAnalytics{}).
		Select("day",
			"COALESCE(SUM(views), 0) as views",
			"COALESCE(SUM(downloads), 0) as downloads",
			"COALESCE(SUM(purchases), 0) as purchases",
			"COALESCE(SUM(revenue), 0) as revenue").
		Where("day >= ? AND day <= ?", fromDay, toDay).
		Group("day").
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetTopTemplates 获取模板排行榜（带标题回退）
func (r *GormDashboardRepository) GetTopTemplates(fromDay, toDay string, limit int) ([]DashboardTemplateRankingRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows := make([]DashboardTemplateRankingRow, 0)
	titleExpr := fmt.Sprintf("COALESCE(%s, %s, '')",
		jsonTextExpr(r.db, "templates.title_json", "en-US"),
		jsonTextExpr(r.db, "templates.title_json", "zh-CN"),
	)
	err := r.db.Model(&models.TemplateAnalytics{}).
		Select(fmt.Sprintf(`
			template_analytics.template_id as template_id,
			COALESCE(templates.slug, '') as slug,
			%s as title,
			COALESCE(SUM(template_analytics.views), 0) as views,
			COALESCE(SUM(template_analytics.downloads), 0) as downloads,
			COALESCE(SUM(template_analytics.purchases), 0) as purchases,
			COALESCE(SUM(template_analytics.revenue), 0) as revenue
		`, titleExpr)).
		Joins("LEFT JOIN templates ON templates.id = template_analytics.template_id").
		Where("template_analytics.day >= ? AND template_analytics.day <= ?", fromDay, toDay).
		Group("template_analytics.template_id, slug, title").
		Order("revenue DESC, purchases DESC, views DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
