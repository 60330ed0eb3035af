package service

import (
	"time"

	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"

	"gorm.io/gorm"
)

// AnalyticsService 模板统计服务
// 浏览/下载计数失败只记日志，不影响主请求
type AnalyticsService struct {
	repo         repository.TemplateAnalyticsRepository
	templateRepo repository.TemplateRepository
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(repo repository.TemplateAnalyticsRepository, templateRepo repository.TemplateRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, templateRepo: templateRepo}
}

// RecordView 记录一次模板浏览
func (s *AnalyticsService) RecordView(templateID uint) {
	if s == nil || s.repo == nil || templateID == 0 {
		return
	}
	if err := s.repo.IncrementViews(templateID, models.AnalyticsDay(time.Now()), 1); err != nil {
		logger.Warnw("analytics_record_view_failed", "error", err, "template_id", templateID)
	}
}

// RecordDownload 记录一次模板下载
func (s *AnalyticsService) RecordDownload(templateID uint) {
	if s == nil || s.repo == nil || templateID == 0 {
		return
	}
	if err := s.repo.IncrementDownloads(templateID, models.AnalyticsDay(time.Now()), 1); err != nil {
		logger.Warnw("analytics_record_download_failed", "error", err, "template_id", templateID)
	}
}

// RecordPurchase 记录一笔购买与收入
// 支付成功路径调用，失败必须上抛（收入口径不允许丢）
func (s *AnalyticsService) RecordPurchase(templateID uint, revenue models.Money, at time.Time) error {
	if s == nil || s.repo == nil || templateID == 0 {
		return nil
	}
	return s.repo.AddPurchase(templateID, models.AnalyticsDay(at), revenue)
}

// RecordPurchaseTx 在外部事务内记录购买与收入
func (s *AnalyticsService) RecordPurchaseTx(tx *gorm.DB, templateID uint, revenue models.Money, at time.Time) error {
	if s == nil || s.repo == nil || templateID == 0 {
		return nil
	}
	return s.repo.WithTx(tx).AddPurchase(templateID, models.AnalyticsDay(at), revenue)
}

// ListByTemplate 查询单模板的按日统计
func (s *AnalyticsService) ListByTemplate(templateID uint, from, to time.Time) ([]models.TemplateAnalytics, error) {
	template, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if from.After(to) {
		return nil, ErrDashboardRangeInvalid
	}
	return s.repo.ListByTemplate(templateID, models.AnalyticsDay(from), models.AnalyticsDay(to))
}

// TopByRevenue 按收入排行的模板榜单
func (s *AnalyticsService) TopByRevenue(from, to time.Time, limit int) ([]repository.TemplateRankingRow, error) {
	if from.After(to) {
		return nil, ErrDashboardRangeInvalid
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.repo.TopByRevenue(models.AnalyticsDay(from), models.AnalyticsDay(to), limit)
}
