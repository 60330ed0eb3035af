package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/repository"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心经营数据。
type DashboardService struct {
	repo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{repo: repo}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	Timezone     string
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range    string       `json:"range"`
	From     string       `json:"from"`
	To       string       `json:"to"`
	Timezone string       `json:"timezone"`
	Currency string       `json:"currency,omitempty"`
	KPI      DashboardKPI `json:"kpi"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	UsersTotal           int64  `json:"users_total"`
	NewUsers             int64  `json:"new_users"`
	LiveTemplates        int64  `json:"live_templates"`
	TotalTemplates       int64  `json:"total_templates"`
	ProjectsTotal        int64  `json:"projects_total"`
	PublishedProjects    int64  `json:"published_projects"`
	ConfirmedSubscribers int64  `json:"confirmed_subscribers"`
	ActiveSubscriptions  int64  `json:"active_subscriptions"`
	PaymentsTotal        int64  `json:"payments_total"`
	PaymentsSuccess      int64  `json:"payments_success"`
	PaymentsFailed       int64  `json:"payments_failed"`
	PaymentSuccessRate   string `json:"payment_success_rate"`
	GMVPaid              string `json:"gmv_paid"`
}

// DashboardTrendResponse 仪表盘趋势响应
type DashboardTrendResponse struct {
	Range    string                `json:"range"`
	From     string                `json:"from"`
	To       string                `json:"to"`
	Timezone string                `json:"timezone"`
	Points   []DashboardTrendPoint `json:"points"`
}

// DashboardTrendPoint 趋势图单日数据
type DashboardTrendPoint struct {
	Date            string `json:"date"`
	Views           int64  `json:"views"`
	Downloads       int64  `json:"downloads"`
	Purchases       int64  `json:"purchases"`
	Revenue         string `json:"revenue"`
	PaymentsSuccess int64  `json:"payments_success"`
	PaymentsFailed  int64  `json:"payments_failed"`
	GMVPaid         string `json:"gmv_paid"`
}

// DashboardRankingsResponse 仪表盘排行榜响应
type DashboardRankingsResponse struct {
	Range     string                        `json:"range"`
	From      string                        `json:"from"`
	To        string                        `json:"to"`
	Timezone  string                        `json:"timezone"`
	Templates []DashboardTemplateRankingRow `json:"templates"`
}

// DashboardTemplateRankingRow 模板排行响应行
type DashboardTemplateRankingRow struct {
	TemplateID uint   `json:"template_id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Views      int64  `json:"views"`
	Downloads  int64  `json:"downloads"`
	Purchases  int64  `json:"purchases"`
	Revenue    string `json:"revenue"`
}

type dashboardWindow struct {
	rangeKey string
	timezone string
	startAt  time.Time
	endAt    time.Time
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d:%s",
		window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	paymentSuccessRate := 0.0
	if overview.PaymentsTotal > 0 {
		paymentSuccessRate = float64(overview.PaymentsSuccess) / float64(overview.PaymentsTotal) * 100
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Currency: strings.ToUpper(strings.TrimSpace(overview.Currency)),
		KPI: DashboardKPI{
			UsersTotal:           overview.UsersTotal,
			NewUsers:             overview.NewUsers,
			LiveTemplates:        overview.LiveTemplates,
			TotalTemplates:       overview.TotalTemplates,
			ProjectsTotal:        overview.ProjectsTotal,
			PublishedProjects:    overview.PublishedProjects,
			ConfirmedSubscribers: overview.ConfirmedSubscribers,
			ActiveSubscriptions:  overview.ActiveSubscriptions,
			PaymentsTotal:        overview.PaymentsTotal,
			PaymentsSuccess:      overview.PaymentsSuccess,
			PaymentsFailed:       overview.PaymentsFailed,
			PaymentSuccessRate:   formatPercentValue(paymentSuccessRate),
			GMVPaid:              formatMoneyValue(overview.GMVPaid),
		},
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetTrends 获取仪表盘趋势
func (s *DashboardService) GetTrends(ctx context.Context, input DashboardQueryInput) (*DashboardTrendResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardTrendResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:trends:%s:%d:%d:%s", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone)
	if !input.ForceRefresh {
		var cached DashboardTrendResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	fromDay := window.startAt.Format("2006-01-02")
	toDay := window.endAt.Add(-time.Second).Format("2006-01-02")
	analyticsRows, err := s.repo.GetAnalyticsTrends(fromDay, toDay)
	if err != nil {
		return nil, err
	}
	paymentRows, err := s.repo.GetPaymentTrends(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}

	analyticsMap := make(map[string]repository.DashboardAnalyticsTrendRow, len(analyticsRows))
	for _, item := range analyticsRows {
		analyticsMap[item.Day] = item
	}
	paymentMap := make(map[string]repository.DashboardPaymentTrendRow, len(paymentRows))
	for _, item := range paymentRows {
		paymentMap[item.Day] = item
	}

	points := make([]DashboardTrendPoint, 0)
	for cursor := time.Date(window.startAt.Year(), window.startAt.Month(), window.startAt.Day(), 0, 0, 0, 0, window.startAt.Location()); cursor.Before(window.endAt); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format("2006-01-02")
		analyticsItem := analyticsMap[day]
		paymentItem := paymentMap[day]
		points = append(points, DashboardTrendPoint{
			Date:            day,
			Views:           analyticsItem.Views,
			Downloads:       analyticsItem.Downloads,
			Purchases:       analyticsItem.Purchases,
			Revenue:         formatMoneyValue(analyticsItem.Revenue),
			PaymentsSuccess: paymentItem.PaymentsSuccess,
			PaymentsFailed:  paymentItem.PaymentsFailed,
			GMVPaid:         formatMoneyValue(paymentItem.GMVPaid),
		})
	}

	response := &DashboardTrendResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone: window.timezone,
		Points:   points,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// GetRankings 获取模板排行榜
func (s *DashboardService) GetRankings(ctx context.Context, input DashboardQueryInput, limit int) (*DashboardRankingsResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardRankingsResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("dashboard:rankings:%s:%d:%d:%s:%d", window.rangeKey, window.startAt.Unix(), window.endAt.Unix(), window.timezone, limit)
	if !input.ForceRefresh {
		var cached DashboardRankingsResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	fromDay := window.startAt.Format("2006-01-02")
	toDay := window.endAt.Add(-time.Second).Format("2006-01-02")
	rows, err := s.repo.GetTopTemplates(fromDay, toDay, limit)
	if err != nil {
		return nil, err
	}

	templates := make([]DashboardTemplateRankingRow, 0, len(rows))
	for _, row := range rows {
		templates = append(templates, DashboardTemplateRankingRow{
			TemplateID: row.TemplateID,
			Slug:       row.Slug,
			Title:      row.Title,
			Views:      row.Views,
			Downloads:  row.Downloads,
			Purchases:  row.Purchases,
			Revenue:    formatMoneyValue(row.Revenue),
		})
	}

	response := &DashboardRankingsResponse{
		Range:     window.rangeKey,
		From:      window.startAt.Format(time.RFC3339),
		To:        window.endAt.Add(-time.Second).Format(time.RFC3339),
		Timezone:  window.timezone,
		Templates: templates,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	if rangeKey == "" {
		rangeKey = "7d"
	}

	timezone := strings.TrimSpace(input.Timezone)
	location := time.Local
	if timezone != "" {
		if parsed, err := time.LoadLocation(timezone); err == nil {
			location = parsed
		} else {
			timezone = ""
		}
	}
	if timezone == "" {
		timezone = location.String()
	}

	localNow := now.In(location)
	todayStart := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, location)
	window := dashboardWindow{rangeKey: rangeKey, timezone: timezone}

	switch rangeKey {
	case "today":
		window.startAt = todayStart
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "7d":
		window.startAt = todayStart.AddDate(0, 0, -6)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "30d":
		window.startAt = todayStart.AddDate(0, 0, -29)
		window.endAt = todayStart.AddDate(0, 0, 1)
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.In(location)
		endAt := input.To.In(location)
		if endAt.Before(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if endAt.Sub(startAt) > time.Hour*24*dashboardCustomMaxDays {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		window.startAt = startAt
		window.endAt = endAt.Add(time.Second)
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}

	if !window.endAt.After(window.startAt) {
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
	return window, nil
}

func formatMoneyValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func formatPercentValue(value float64) string {
	return fmt.Sprintf("%.2f", value)
}
