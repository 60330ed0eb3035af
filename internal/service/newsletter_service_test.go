package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupNewsletterServiceTest(t *testing.T) (*NewsletterService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:newsletter_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.NewsletterSubscriber{}); err != nil {
		t.Fatalf("migrate newsletter table failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Newsletter.ConfirmBaseURL = "https://pagespark.dev/newsletter/confirm"
	cfg.Newsletter.ConfirmExpireHours = 48

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	return NewNewsletterService(cfg, repository.NewNewsletterRepository(db), queueClient), db
}

func newsletterTestEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestNewsletterSubscribeAndConfirm(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	email := newsletterTestEmail("join")

	subscriber, err := svc.Subscribe(SubscribeInput{Email: email, Locale: "zh-CN", ClientIP: "10.0.0.9"})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if subscriber.Status != constants.NewsletterStatusPending {
		t.Fatalf("status want pending got %s", subscriber.Status)
	}
	if subscriber.ConfirmToken == "" {
		t.Fatal("pending subscriber should hold a confirm token")
	}
	if url := svc.ConfirmURL(subscriber.ConfirmToken); url != "https://pagespark.dev/newsletter/confirm?token="+subscriber.ConfirmToken {
		t.Fatalf("unexpected confirm url %q", url)
	}

	confirmed, err := svc.Confirm(subscriber.ConfirmToken)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != constants.NewsletterStatusConfirmed {
		t.Fatalf("status want confirmed got %s", confirmed.Status)
	}
	if confirmed.ConfirmToken != "" {
		t.Fatal("confirm token should be cleared after confirmation")
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatal("confirmed_at should be set")
	}

	// 已确认后重复订阅报错
	if _, err := svc.Subscribe(SubscribeInput{Email: email}); err != ErrNewsletterSubscribed {
		t.Fatalf("want ErrNewsletterSubscribed got %v", err)
	}
}

func TestNewsletterSubscribeNormalizesEmail(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	raw := newsletterTestEmail("Mixed.Case")

	subscriber, err := svc.Subscribe(SubscribeInput{Email: "  " + raw + "  "})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if subscriber.Email != strings.ToLower(raw) {
		t.Fatalf("email not normalized: %q", subscriber.Email)
	}
	if subscriber.Locale != constants.LocaleEnUS {
		t.Fatalf("locale default want en-US got %s", subscriber.Locale)
	}

	if _, err := svc.Subscribe(SubscribeInput{Email: "not-an-email"}); err != ErrInvalidEmail {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
}

func TestNewsletterResubscribeRefreshesToken(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	email := newsletterTestEmail("pending")

	first, err := svc.Subscribe(SubscribeInput{Email: email})
	if err != nil {
		t.Fatalf("first subscribe failed: %v", err)
	}
	second, err := svc.Subscribe(SubscribeInput{Email: email})
	if err != nil {
		t.Fatalf("resubscribe failed: %v", err)
	}
	if first.ConfirmToken == second.ConfirmToken {
		t.Fatal("resubscribe should rotate the confirm token")
	}

	// 旧令牌失效
	if _, err := svc.Confirm(first.ConfirmToken); err != ErrNewsletterTokenInvalid {
		t.Fatalf("stale token: want ErrNewsletterTokenInvalid got %v", err)
	}
	if _, err := svc.Confirm(second.ConfirmToken); err != nil {
		t.Fatalf("fresh token confirm failed: %v", err)
	}
}

func TestNewsletterConfirmExpiredToken(t *testing.T) {
	svc, db := setupNewsletterServiceTest(t)
	email := newsletterTestEmail("expired")

	subscriber, err := svc.Subscribe(SubscribeInput{Email: email})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	sentAt := time.Now().Add(-72 * time.Hour)
	if err := db.Model(&models.NewsletterSubscriber{}).Where("id = ?", subscriber.ID).Update("confirm_sent_at", sentAt).Error; err != nil {
		t.Fatalf("backdate confirm_sent_at failed: %v", err)
	}

	if _, err := svc.Confirm(subscriber.ConfirmToken); err != ErrNewsletterTokenExpired {
		t.Fatalf("want ErrNewsletterTokenExpired got %v", err)
	}
}

func TestNewsletterUnsubscribeAndRejoin(t *testing.T) {
	svc, _ := setupNewsletterServiceTest(t)
	email := newsletterTestEmail("leave")

	subscriber, err := svc.Subscribe(SubscribeInput{Email: email})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if _, err := svc.Confirm(subscriber.ConfirmToken); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if err := svc.Unsubscribe(email); err != nil {
		t.Fatalf("unsubscribe failed: %v", err)
	}
	if err := svc.Unsubscribe(email); err != ErrNotFound {
		t.Fatalf("repeat unsubscribe: want ErrNotFound got %v", err)
	}

	// 退订后可重新走订阅确认流程
	rejoined, err := svc.Subscribe(SubscribeInput{Email: email})
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if rejoined.Status != constants.NewsletterStatusPending {
		t.Fatalf("rejoin status want pending got %s", rejoined.Status)
	}
}
