package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/provider"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAdminAuthHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_auth_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.AdminUser{},
		&models.AdminSession{},
		&models.AdminAuditLog{},
		&models.AdminLoginAttempt{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.AdminSession.ExpireHours = 24
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8}

	audit := service.NewAdminAuditService(
		repository.NewAdminAuditLogRepository(db),
		repository.NewAdminLoginAttemptRepository(db),
	)
	userRepo := repository.NewAdminUserRepository(db)
	sessionRepo := repository.NewAdminSessionRepository(db)
	authService := service.NewAdminAuthService(cfg, userRepo, sessionRepo, audit)
	userService := service.NewAdminUserService(userRepo, sessionRepo, authService, audit)

	h := &Handler{Container: &provider.Container{
		Config:           cfg,
		AdminAuthService: authService,
		AdminUserService: userService,
	}}
	return h, db
}

func seedHandlerAdmin(t *testing.T, db *gorm.DB, email, password string) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.AdminUser{
		Email:        email,
		Name:         "Handler Admin",
		PasswordHash: string(hash),
		Role:         constants.AdminRoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func postAdminLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/admin/auth/login", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.AdminLogin(c)
	return w
}

func TestAdminLoginHandlerSuccess(t *testing.T) {
	h, db := setupAdminAuthHandlerTest(t)
	seedHandlerAdmin(t, db, "handler@pagespark.dev", "S3curePass!")

	w := postAdminLogin(t, h, `{"email":"handler@pagespark.dev","password":"S3curePass!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}

	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			Token string `json:"token"`
			Admin struct {
				Email string `json:"email"`
				Role  string `json:"role"`
			} `json:"admin"`
			ExpiresAt string `json:"expires_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if len(resp.Data.Token) != 64 {
		t.Fatalf("token length want 64 got %d", len(resp.Data.Token))
	}
	if resp.Data.Admin.Email != "handler@pagespark.dev" {
		t.Fatalf("admin email mismatch: %s", resp.Data.Admin.Email)
	}
	if _, err := time.Parse(time.RFC3339, resp.Data.ExpiresAt); err != nil {
		t.Fatalf("expires_at should be RFC3339: %v", err)
	}
}

func TestAdminLoginHandlerWrongPassword(t *testing.T) {
	h, db := setupAdminAuthHandlerTest(t)
	seedHandlerAdmin(t, db, "wrongpass@pagespark.dev", "S3curePass!")

	w := postAdminLogin(t, h, `{"email":"wrongpass@pagespark.dev","password":"Nope12345!"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func TestAdminLoginHandlerMissingFields(t *testing.T) {
	h, _ := setupAdminAuthHandlerTest(t)

	w := postAdminLogin(t, h, `{"email":"only@pagespark.dev"}`)
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
}

func TestAdminLogoutHandlerRevokesSession(t *testing.T) {
	h, db := setupAdminAuthHandlerTest(t)
	seedHandlerAdmin(t, db, "logout@pagespark.dev", "S3curePass!")

	result, err := h.AdminAuthService.Login(service.AdminLoginInput{
		Email:    "logout@pagespark.dev",
		Password: "S3curePass!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/admin/auth/logout", nil)
	c.Request.Header.Set("Authorization", "Bearer "+result.Token)
	h.AdminLogout(c)

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}

	if _, _, err := h.AdminAuthService.VerifyToken(context.Background(), result.Token); err != service.ErrSessionNotFound {
		t.Fatalf("revoked token want ErrSessionNotFound got %v", err)
	}
}

func TestBearerTokenParsing(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/auth/verify", nil)
	c.Request.Header.Set("Authorization", "Bearer  abc123 ")
	if got := bearerToken(c); got != "abc123" {
		t.Fatalf("token want abc123 got %q", got)
	}

	c.Request.Header.Set("Authorization", "Basic abc123")
	if got := bearerToken(c); got != "" {
		t.Fatalf("non-bearer header should yield empty token, got %q", got)
	}

	c.Request.Header.Del("Authorization")
	if got := bearerToken(c); got != "" {
		t.Fatalf("missing header should yield empty token, got %q", got)
	}
}
