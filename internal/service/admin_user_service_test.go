package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"

	"gorm.io/gorm"
)

func setupAdminUserServiceTest(t *testing.T) (*AdminUserService, *AdminAuthService, *gorm.DB) {
	t.Helper()
	auth, db := setupAdminAuthServiceTest(t)
	svc := NewAdminUserService(
		repository.NewAdminUserRepository(db),
		repository.NewAdminSessionRepository(db),
		auth,
		nil,
	)
	return svc, auth, db
}

func TestCreateInactiveAdminStaysInactive(t *testing.T) {
	svc, auth, db := setupAdminUserServiceTest(t)
	createTestAdmin(t, db, "root@pagespark.dev", "RootPass9!", true)

	inactive := false
	created, err := svc.Create(AdminUserInput{
		Email:    "frozen@pagespark.dev",
		Name:     "Frozen",
		Password: "FrozenPass9!",
		IsActive: &inactive,
	}, nil, AdminLoginInput{})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var stored models.AdminUser
	if err := db.First(&stored, created.ID).Error; err != nil {
		t.Fatalf("load admin failed: %v", err)
	}
	if stored.IsActive {
		t.Fatal("admin created inactive must be stored inactive")
	}

	_, err = auth.Login(AdminLoginInput{Email: "frozen@pagespark.dev", Password: "FrozenPass9!"})
	if !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("inactive admin login want ErrAccountInactive got %v", err)
	}
}

func TestDeactivateAdminRevokesSessions(t *testing.T) {
	svc, auth, db := setupAdminUserServiceTest(t)
	admin := createTestAdmin(t, db, "mod@pagespark.dev", "ModPass99!", true)

	result, err := auth.Login(AdminLoginInput{Email: "mod@pagespark.dev", Password: "ModPass99!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	inactive := false
	if _, err := svc.Update(admin.ID, AdminUserInput{IsActive: &inactive}, nil, AdminLoginInput{}); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	if _, _, err := auth.VerifyToken(context.Background(), result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("session after deactivate want ErrSessionNotFound got %v", err)
	}

	var session models.AdminSession
	if err := db.Where("admin_id = ?", admin.ID).First(&session).Error; err != nil {
		t.Fatalf("load session failed: %v", err)
	}
	if session.RevokedAt == nil {
		t.Fatal("session row should carry revoked_at after deactivate")
	}
}

func TestDeleteAdminRevokesSessions(t *testing.T) {
	svc, auth, db := setupAdminUserServiceTest(t)
	createTestAdmin(t, db, "root@pagespark.dev", "RootPass9!", true)
	admin := createTestAdmin(t, db, "gone@pagespark.dev", "GonePass9!", true)

	result, err := auth.Login(AdminLoginInput{Email: "gone@pagespark.dev", Password: "GonePass9!"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Delete(admin.ID, nil, AdminLoginInput{}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, _, err := auth.VerifyToken(context.Background(), result.Token); err == nil {
		t.Fatal("deleted admin's session must not verify")
	}
}
