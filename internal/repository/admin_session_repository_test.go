package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAdminSessionRepositoryTest(t *testing.T) *GormAdminSessionRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:admin_session_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.AdminUser{}, &models.AdminSession{}); err != nil {
		t.Fatalf("migrate admin session failed: %v", err)
	}
	return NewAdminSessionRepository(db)
}

func createTestSession(t *testing.T, repo *GormAdminSessionRepository, adminID uint, token string, expiresAt time.Time) *models.AdminSession {
	t.Helper()
	session := &models.AdminSession{
		AdminID:   adminID,
		Token:     token,
		ClientIP:  "127.0.0.1",
		ExpiresAt: expiresAt,
	}
	if err := repo.Create(session); err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	return session
}

func TestAdminSessionGetByTokenAndRevoke(t *testing.T) {
	repo := setupAdminSessionRepositoryTest(t)
	now := time.Now()
	token := fmt.Sprintf("tok-get-revoke-%d", now.UnixNano())
	createTestSession(t, repo, 1, token, now.Add(time.Hour))

	session, err := repo.GetByToken(token)
	if err != nil {
		t.Fatalf("get by token failed: %v", err)
	}
	if session == nil {
		t.Fatal("session should be found")
	}
	if session.IsRevoked() {
		t.Fatal("fresh session should not be revoked")
	}
	if session.IsExpired(now) {
		t.Fatal("fresh session should not be expired")
	}

	if err := repo.Revoke(token, now); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	session, err = repo.GetByToken(token)
	if err != nil {
		t.Fatalf("get after revoke failed: %v", err)
	}
	if session == nil || !session.IsRevoked() {
		t.Fatal("session should be revoked")
	}
}

func TestAdminSessionGetByTokenNotFound(t *testing.T) {
	repo := setupAdminSessionRepositoryTest(t)
	session, err := repo.GetByToken("missing-token")
	if err != nil {
		t.Fatalf("get by token failed: %v", err)
	}
	if session != nil {
		t.Fatal("missing token should return nil session")
	}
}

func TestAdminSessionRevokeOneKeepsOthers(t *testing.T) {
	repo := setupAdminSessionRepositoryTest(t)
	now := time.Now()
	tokenA := fmt.Sprintf("tok-a-%d", now.UnixNano())
	tokenB := fmt.Sprintf("tok-b-%d", now.UnixNano())
	createTestSession(t, repo, 7, tokenA, now.Add(time.Hour))
	createTestSession(t, repo, 7, tokenB, now.Add(time.Hour))

	count, err := repo.CountActiveByAdmin(7, now)
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("active count want 2 got %d", count)
	}

	if err := repo.Revoke(tokenA, now); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	count, err = repo.CountActiveByAdmin(7, now)
	if err != nil {
		t.Fatalf("count active failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("active count after revoke want 1 got %d", count)
	}

	remaining, err := repo.GetByToken(tokenB)
	if err != nil {
		t.Fatalf("get remaining failed: %v", err)
	}
	if remaining == nil || remaining.IsRevoked() {
		t.Fatal("untouched session should stay valid")
	}
}

func TestAdminSessionDeleteExpiredBefore(t *testing.T) {
	repo := setupAdminSessionRepositoryTest(t)
	now := time.Now()
	expiredToken := fmt.Sprintf("tok-expired-%d", now.UnixNano())
	liveToken := fmt.Sprintf("tok-live-%d", now.UnixNano())
	createTestSession(t, repo, 9, expiredToken, now.Add(-time.Hour))
	createTestSession(t, repo, 9, liveToken, now.Add(time.Hour))

	deleted, err := repo.DeleteExpiredBefore(now)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted want 1 got %d", deleted)
	}

	session, err := repo.GetByToken(expiredToken)
	if err != nil {
		t.Fatalf("get expired failed: %v", err)
	}
	if session != nil {
		t.Fatal("expired session should be deleted")
	}
	session, err = repo.GetByToken(liveToken)
	if err != nil {
		t.Fatalf("get live failed: %v", err)
	}
	if session == nil {
		t.Fatal("live session should survive sweep")
	}
}
