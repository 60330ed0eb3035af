package service

import (
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"
)

// PlanService 订阅计划服务
type PlanService struct {
	repo repository.PlanRepository
}

// NewPlanService 创建计划服务
func NewPlanService(repo repository.PlanRepository) *PlanService {
	return &PlanService{repo: repo}
}

// PlanInput 创建/更新计划输入
type PlanInput struct {
	Code            string
	NameJSON        map[string]interface{}
	DescriptionJSON map[string]interface{}
	PriceAmount     string
	Currency        string
	Interval        string
	Features        []string
	ProjectLimit    int
	IsActive        bool
	SortOrder       int
}

func normalizePlanInterval(raw string) string {
	if strings.TrimSpace(strings.ToLower(raw)) == constants.PlanIntervalYear {
		return constants.PlanIntervalYear
	}
	return constants.PlanIntervalMonth
}

// ListActive 定价页可见的计划列表
func (s *PlanService) ListActive() ([]models.Plan, error) {
	return s.repo.ListActive()
}

// ListAdmin 后台计划列表
func (s *PlanService) ListAdmin(filter repository.PlanListFilter) ([]models.Plan, int64, error) {
	return s.repo.List(filter)
}

// GetByCode 按 code 获取计划
func (s *PlanService) GetByCode(code string) (*models.Plan, error) {
	plan, err := s.repo.GetByCode(strings.TrimSpace(strings.ToLower(code)))
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// Create 创建计划
func (s *PlanService) Create(input PlanInput) (*models.Plan, error) {
	code := strings.TrimSpace(strings.ToLower(input.Code))
	if code == "" {
		return nil, ErrPlanCodeExists
	}
	existing, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPlanCodeExists
	}

	price, err := models.NewMoneyFromString(input.PriceAmount)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.CurrencyUSD
	}

	plan := &models.Plan{
		Code:            code,
		NameJSON:        models.JSON(input.NameJSON),
		DescriptionJSON: models.JSON(input.DescriptionJSON),
		PriceAmount:     price,
		Currency:        currency,
		Interval:        normalizePlanInterval(input.Interval),
		Features:        models.StringArray(input.Features),
		ProjectLimit:    input.ProjectLimit,
		IsActive:        input.IsActive,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Update 更新计划
func (s *PlanService) Update(id uint, input PlanInput) (*models.Plan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	code := strings.TrimSpace(strings.ToLower(input.Code))
	existing, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrPlanCodeExists
	}

	price, err := models.NewMoneyFromString(input.PriceAmount)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = plan.Currency
	}

	plan.Code = code
	plan.NameJSON = models.JSON(input.NameJSON)
	plan.DescriptionJSON = models.JSON(input.DescriptionJSON)
	plan.PriceAmount = price
	plan.Currency = currency
	plan.Interval = normalizePlanInterval(input.Interval)
	plan.Features = models.StringArray(input.Features)
	plan.ProjectLimit = input.ProjectLimit
	plan.IsActive = input.IsActive
	plan.SortOrder = input.SortOrder

	if err := s.repo.Update(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete 删除计划
// 仍有订阅引用的计划不可删除
func (s *PlanService) Delete(id uint) error {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if plan == nil {
		return ErrPlanNotFound
	}

	count, err := s.repo.CountSubscriptions(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPlanInUse
	}
	return s.repo.Delete(id)
}
