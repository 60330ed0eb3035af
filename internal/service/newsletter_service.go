package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"
)

const newsletterTokenBytes = 24

// NewsletterService 邮件订阅服务（双重确认）
type NewsletterService struct {
	cfg         *config.Config
	repo        repository.NewsletterRepository
	queueClient *queue.Client
}

// NewNewsletterService 创建订阅服务
func NewNewsletterService(cfg *config.Config, repo repository.NewsletterRepository, queueClient *queue.Client) *NewsletterService {
	return &NewsletterService{cfg: cfg, repo: repo, queueClient: queueClient}
}

// SubscribeInput 订阅输入
type SubscribeInput struct {
	Email    string
	Locale   string
	ClientIP string
}

func generateConfirmToken() (string, error) {
	raw := make([]byte, newsletterTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

func (s *NewsletterService) confirmExpireHours() int {
	hours := s.cfg.Newsletter.ConfirmExpireHours
	if hours <= 0 {
		hours = 48
	}
	return hours
}

// ConfirmURL 拼接确认链接
func (s *NewsletterService) ConfirmURL(token string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.Newsletter.ConfirmBaseURL), "/")
	if base == "" || token == "" {
		return ""
	}
	return fmt.Sprintf("%s?token=%s", base, token)
}

// Subscribe 订阅邮箱
// 重复订阅：confirmed 报已订阅；pending/unsubscribed 刷新令牌重发确认邮件
func (s *NewsletterService) Subscribe(input SubscribeInput) (*models.NewsletterSubscriber, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	locale := strings.TrimSpace(input.Locale)
	if locale == "" {
		locale = constants.LocaleEnUS
	}

	token, err := generateConfirmToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	subscriber, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if subscriber != nil {
		if subscriber.Status == constants.NewsletterStatusConfirmed {
			return nil, ErrNewsletterSubscribed
		}
		subscriber.Status = constants.NewsletterStatusPending
		subscriber.ConfirmToken = token
		subscriber.ConfirmSentAt = &now
		subscriber.Locale = locale
		subscriber.UnsubscribedAt = nil
		if err := s.repo.Update(subscriber); err != nil {
			return nil, err
		}
	} else {
		subscriber = &models.NewsletterSubscriber{
			Email:         email,
			Status:        constants.NewsletterStatusPending,
			ConfirmToken:  token,
			ConfirmSentAt: &now,
			Locale:        locale,
			ClientIP:      strings.TrimSpace(input.ClientIP),
		}
		if err := s.repo.Create(subscriber); err != nil {
			return nil, err
		}
	}

	if err := s.queueClient.EnqueueNewsletterConfirm(queue.NewsletterConfirmPayload{SubscriberID: subscriber.ID}); err != nil {
		return nil, ErrQueueUnavailable
	}
	return subscriber, nil
}

// Confirm 确认订阅
func (s *NewsletterService) Confirm(token string) (*models.NewsletterSubscriber, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNewsletterTokenInvalid
	}
	subscriber, err := s.repo.GetByConfirmToken(token)
	if err != nil {
		return nil, err
	}
	if subscriber == nil || subscriber.Status != constants.NewsletterStatusPending {
		return nil, ErrNewsletterTokenInvalid
	}
	if subscriber.ConfirmSentAt != nil {
		deadline := subscriber.ConfirmSentAt.Add(time.Duration(s.confirmExpireHours()) * time.Hour)
		if time.Now().After(deadline) {
			return nil, ErrNewsletterTokenExpired
		}
	}

	now := time.Now()
	subscriber.Status = constants.NewsletterStatusConfirmed
	subscriber.ConfirmToken = ""
	subscriber.ConfirmedAt = &now
	if err := s.repo.Update(subscriber); err != nil {
		return nil, err
	}
	return subscriber, nil
}

// Unsubscribe 退订
func (s *NewsletterService) Unsubscribe(email string) error {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return ErrInvalidEmail
	}
	subscriber, err := s.repo.GetByEmail(normalized)
	if err != nil {
		return err
	}
	if subscriber == nil || subscriber.Status == constants.NewsletterStatusUnsubscribed {
		return ErrNotFound
	}

	now := time.Now()
	subscriber.Status = constants.NewsletterStatusUnsubscribed
	subscriber.ConfirmToken = ""
	subscriber.UnsubscribedAt = &now
	return s.repo.Update(subscriber)
}

// GetByID 获取订阅记录（worker 发确认邮件用）
func (s *NewsletterService) GetByID(id uint) (*models.NewsletterSubscriber, error) {
	subscriber, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if subscriber == nil {
		return nil, ErrNotFound
	}
	return subscriber, nil
}

// ListAdmin 后台订阅列表
func (s *NewsletterService) ListAdmin(filter repository.NewsletterListFilter) ([]models.NewsletterSubscriber, int64, error) {
	return s.repo.List(filter)
}

// CountByStatus 按状态统计订阅数
func (s *NewsletterService) CountByStatus(status string) (int64, error) {
	return s.repo.CountByStatus(status)
}

// Delete 删除订阅记录
func (s *NewsletterService) Delete(id uint) error {
	return s.repo.Delete(id)
}
