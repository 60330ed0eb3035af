package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAdminAuthServiceTest(t *testing.T) (*AdminAuthService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:admin_auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.AdminUser{}, &models.AdminSession{}, &models.AdminAuditLog{}, &models.AdminLoginAttempt{}); err != nil {
		t.Fatalf("migrate admin auth tables failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.AdminSession.ExpireHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}

	audit := NewAdminAuditService(
		repository.NewAdminAuditLogRepository(db),
		repository.NewAdminLoginAttemptRepository(db),
	)
	svc := NewAdminAuthService(cfg,
		repository.NewAdminUserRepository(db),
		repository.NewAdminSessionRepository(db),
		audit,
	)
	return svc, db
}

func createTestAdmin(t *testing.T, db *gorm.DB, email, password string, active bool) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.AdminUser{
		Email:        email,
		Name:         "Test Admin",
		PasswordHash: string(hash),
		Role:         constants.AdminRoleAdmin,
		IsActive:     active,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestAdminLoginSuccessCreatesVerifiableSession(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	createTestAdmin(t, db, "owner@pagespark.dev", "S3curePass!", true)

	result, err := svc.Login(AdminLoginInput{
		Email:    "owner@pagespark.dev",
		Password: "S3curePass!",
		ClientIP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if len(result.Token) != 64 {
		t.Fatalf("token length want 64 got %d", len(result.Token))
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatal("session should expire in the future")
	}

	admin, session, err := svc.VerifyToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if admin.Email != "owner@pagespark.dev" {
		t.Fatalf("verify returned wrong admin: %s", admin.Email)
	}
	if session.AdminID != admin.ID {
		t.Fatal("session should belong to the admin")
	}

	var attempt models.AdminLoginAttempt
	if err := db.Where("email = ?", "owner@pagespark.dev").Order("id desc").First(&attempt).Error; err != nil {
		t.Fatalf("load attempt failed: %v", err)
	}
	if !attempt.Success {
		t.Fatal("attempt row should record success")
	}
}

func TestAdminLoginWrongPasswordLeavesNoSession(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	admin := createTestAdmin(t, db, "seed@pagespark.dev", "RightPass9!", true)

	_, err := svc.Login(AdminLoginInput{
		Email:    "seed@pagespark.dev",
		Password: "WrongPass9!",
	})
	if err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}

	var sessionCount int64
	if err := db.Model(&models.AdminSession{}).Where("admin_id = ?", admin.ID).Count(&sessionCount).Error; err != nil {
		t.Fatalf("count sessions failed: %v", err)
	}
	if sessionCount != 0 {
		t.Fatalf("session count want 0 got %d", sessionCount)
	}

	var attemptCount int64
	if err := db.Model(&models.AdminLoginAttempt{}).
		Where("email = ? AND success = ?", "seed@pagespark.dev", false).
		Count(&attemptCount).Error; err != nil {
		t.Fatalf("count attempts failed: %v", err)
	}
	if attemptCount != 1 {
		t.Fatalf("failed attempt count want 1 got %d", attemptCount)
	}

	var auditCount int64
	if err := db.Model(&models.AdminAuditLog{}).
		Where("admin_email = ? AND action = ? AND outcome = ?", "seed@pagespark.dev", constants.AdminAuditActionLogin, constants.AdminAuditOutcomeFailure).
		Count(&auditCount).Error; err != nil {
		t.Fatalf("count audits failed: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("failure audit count want 1 got %d", auditCount)
	}
}

func TestAdminLoginUnknownEmail(t *testing.T) {
	svc, _ := setupAdminAuthServiceTest(t)
	_, err := svc.Login(AdminLoginInput{
		Email:    "ghost@pagespark.dev",
		Password: "whatever",
	})
	if err != ErrInvalidCredentials {
		t.Fatalf("want ErrInvalidCredentials got %v", err)
	}
}

func TestAdminLoginInactiveAccount(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	createTestAdmin(t, db, "frozen@pagespark.dev", "S3curePass!", false)

	_, err := svc.Login(AdminLoginInput{
		Email:    "frozen@pagespark.dev",
		Password: "S3curePass!",
	})
	if err != ErrAccountInactive {
		t.Fatalf("want ErrAccountInactive got %v", err)
	}
}

func TestVerifyTokenUnknownAndExpired(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	admin := createTestAdmin(t, db, "verify@pagespark.dev", "S3curePass!", true)

	if _, _, err := svc.VerifyToken(context.Background(), "deadbeef"); err != ErrSessionNotFound {
		t.Fatalf("unknown token want ErrSessionNotFound got %v", err)
	}
	if _, _, err := svc.VerifyToken(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("empty token want ErrSessionNotFound got %v", err)
	}

	expired := &models.AdminSession{
		AdminID:   admin.ID,
		Token:     "expiredtokenexpiredtokenexpiredtokenexpiredtokenexpiredtoken12",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := db.Create(expired).Error; err != nil {
		t.Fatalf("create expired session failed: %v", err)
	}
	if _, _, err := svc.VerifyToken(context.Background(), expired.Token); err != ErrSessionExpired {
		t.Fatalf("expired token want ErrSessionExpired got %v", err)
	}
}

func TestTwoLoginsYieldIndependentSessions(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	createTestAdmin(t, db, "dual@pagespark.dev", "S3curePass!", true)

	first, err := svc.Login(AdminLoginInput{Email: "dual@pagespark.dev", Password: "S3curePass!"})
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	second, err := svc.Login(AdminLoginInput{Email: "dual@pagespark.dev", Password: "S3curePass!"})
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("logins should yield distinct tokens")
	}

	if err := svc.Logout(context.Background(), first.Token, AdminLoginInput{}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, _, err := svc.VerifyToken(context.Background(), first.Token); err != ErrSessionNotFound {
		t.Fatalf("revoked token want ErrSessionNotFound got %v", err)
	}
	if _, _, err := svc.VerifyToken(context.Background(), second.Token); err != nil {
		t.Fatalf("second session should stay valid, got %v", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	admin := createTestAdmin(t, db, "rotate@pagespark.dev", "OldPass123!", true)

	result, err := svc.Login(AdminLoginInput{Email: "rotate@pagespark.dev", Password: "OldPass123!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), admin.ID, "OldPass123!", "NewPass456!", AdminLoginInput{}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.VerifyToken(context.Background(), result.Token); err != ErrSessionNotFound {
		t.Fatalf("old session should be revoked, got %v", err)
	}

	if _, err := svc.Login(AdminLoginInput{Email: "rotate@pagespark.dev", Password: "OldPass123!"}); err != ErrInvalidCredentials {
		t.Fatalf("old password should fail, got %v", err)
	}
	if _, err := svc.Login(AdminLoginInput{Email: "rotate@pagespark.dev", Password: "NewPass456!"}); err != nil {
		t.Fatalf("new password should work, got %v", err)
	}
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	svc, db := setupAdminAuthServiceTest(t)
	admin := createTestAdmin(t, db, "weak@pagespark.dev", "OldPass123!", true)

	err := svc.ChangePassword(context.Background(), admin.ID, "OldPass123!", "short", AdminLoginInput{})
	if err == nil {
		t.Fatal("weak password should be rejected")
	}
}

func TestSessionSnapshotUsableEpochMismatch(t *testing.T) {
	state := &cache.AdminSessionState{SessionID: 1, AdminID: 2, IsActive: true, Epoch: 3}
	if !sessionSnapshotUsable(state, 3) {
		t.Fatal("snapshot with matching epoch should be usable")
	}
	if sessionSnapshotUsable(state, 4) {
		t.Fatal("snapshot from before a bulk revoke must not be trusted")
	}
	if sessionSnapshotUsable(nil, 0) {
		t.Fatal("nil snapshot must not be usable")
	}
}
