package service

import (
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"

	"gorm.io/gorm"
)

// SubscriptionService 用户订阅服务
// 状态与周期由支付成功/第三方回调驱动
type SubscriptionService struct {
	repo     repository.SubscriptionRepository
	planRepo repository.PlanRepository
}

// NewSubscriptionService 创建订阅服务
func NewSubscriptionService(repo repository.SubscriptionRepository, planRepo repository.PlanRepository) *SubscriptionService {
	return &SubscriptionService{repo: repo, planRepo: planRepo}
}

func periodEndFor(plan *models.Plan, start time.Time) time.Time {
	if plan != nil && plan.Interval == constants.PlanIntervalYear {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

// GetActiveForUser 用户当前有效订阅
func (s *SubscriptionService) GetActiveForUser(userID uint) (*models.Subscription, error) {
	return s.repo.GetActiveByUser(userID, time.Now())
}

// ApplyPaidPeriod 支付成功后开通或续期订阅
// 已有同计划订阅则顺延周期；无订阅或计划变更则新建/切换
func (s *SubscriptionService) ApplyPaidPeriod(userID, planID uint, providerType, providerCustomer, providerRef string, paidAt time.Time) (*models.Subscription, error) {
	return s.applyPaidPeriod(s.repo, userID, planID, providerType, providerCustomer, providerRef, paidAt)
}

// ApplyPaidPeriodTx 在外部事务内开通或续期订阅
func (s *SubscriptionService) ApplyPaidPeriodTx(tx *gorm.DB, userID, planID uint, providerType, providerCustomer, providerRef string, paidAt time.Time) (*models.Subscription, error) {
	return s.applyPaidPeriod(s.repo.WithTx(tx), userID, planID, providerType, providerCustomer, providerRef, paidAt)
}

func (s *SubscriptionService) applyPaidPeriod(repo repository.SubscriptionRepository, userID, planID uint, providerType, providerCustomer, providerRef string, paidAt time.Time) (*models.Subscription, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrPlanNotFound
	}

	subscription, err := repo.GetActiveByUser(userID, paidAt)
	if err != nil {
		return nil, err
	}

	if subscription != nil && subscription.PlanID == planID {
		// 续期：从当前周期终点顺延
		start := paidAt
		if subscription.CurrentPeriodEnd != nil && subscription.CurrentPeriodEnd.After(paidAt) {
			start = *subscription.CurrentPeriodEnd
		}
		end := periodEndFor(plan, start)
		subscription.Status = constants.SubscriptionStatusActive
		subscription.CurrentPeriodStart = &start
		subscription.CurrentPeriodEnd = &end
		if providerCustomer != "" {
			subscription.ProviderCustomer = providerCustomer
		}
		if providerRef != "" {
			subscription.ProviderRef = providerRef
		}
		if err := repo.Update(subscription); err != nil {
			return nil, err
		}
		return subscription, nil
	}

	if subscription != nil {
		// 换计划：旧订阅标记取消
		now := time.Now()
		subscription.Status = constants.SubscriptionStatusCanceled
		subscription.CanceledAt = &now
		if err := repo.Update(subscription); err != nil {
			return nil, err
		}
	}

	end := periodEndFor(plan, paidAt)
	created := &models.Subscription{
		UserID:             userID,
		PlanID:             planID,
		Status:             constants.SubscriptionStatusActive,
		ProviderType:       strings.TrimSpace(strings.ToLower(providerType)),
		ProviderCustomer:   strings.TrimSpace(providerCustomer),
		ProviderRef:        strings.TrimSpace(providerRef),
		CurrentPeriodStart: &paidAt,
		CurrentPeriodEnd:   &end,
	}
	if err := repo.Create(created); err != nil {
		return nil, err
	}
	return created, nil
}

// MarkPastDue 第三方扣款失败（webhook 驱动）
func (s *SubscriptionService) MarkPastDue(providerRef string) error {
	subscription, err := s.repo.GetByProviderRef(strings.TrimSpace(providerRef))
	if err != nil {
		return err
	}
	if subscription == nil {
		return ErrNotFound
	}
	subscription.Status = constants.SubscriptionStatusPastDue
	return s.repo.Update(subscription)
}

// CancelByProviderRef 第三方侧取消（webhook 驱动）
func (s *SubscriptionService) CancelByProviderRef(providerRef string) error {
	subscription, err := s.repo.GetByProviderRef(strings.TrimSpace(providerRef))
	if err != nil {
		return err
	}
	if subscription == nil {
		return ErrNotFound
	}
	now := time.Now()
	subscription.Status = constants.SubscriptionStatusCanceled
	subscription.CanceledAt = &now
	return s.repo.Update(subscription)
}

// Cancel 用户主动取消（期末生效，保留当前周期）
func (s *SubscriptionService) Cancel(userID uint) (*models.Subscription, error) {
	subscription, err := s.repo.GetActiveByUser(userID, time.Now())
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrNotFound
	}
	now := time.Now()
	subscription.Status = constants.SubscriptionStatusCanceled
	subscription.CanceledAt = &now
	if err := s.repo.Update(subscription); err != nil {
		return nil, err
	}
	return subscription, nil
}

// ListAdmin 后台订阅列表
func (s *SubscriptionService) ListAdmin(filter repository.SubscriptionListFilter) ([]models.Subscription, int64, error) {
	return s.repo.ListAdmin(filter)
}

// CountByStatus 按状态统计订阅
func (s *SubscriptionService) CountByStatus(status string) (int64, error) {
	return s.repo.CountByStatus(status)
}
