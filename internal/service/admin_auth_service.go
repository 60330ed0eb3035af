package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const adminSessionTokenBytes = 32

// logFailedAttemptWrite 尝试记录写入失败时的兜底日志
func logFailedAttemptWrite(err error, email string) {
	logger.Warnw("admin_login_attempt_record_failed", "error", err, "email", email)
}

// AdminAuthService 管理员认证服务
// 说明：管理端使用数据库会话表承载不透明令牌，每次登录生成独立会话；
// 校验顺序固定为 存在 → 撤销 → 过期 → 账号状态。
type AdminAuthService struct {
	cfg         *config.Config
	adminRepo   repository.AdminUserRepository
	sessionRepo repository.AdminSessionRepository
	audit       *AdminAuditService
}

// NewAdminAuthService 创建管理员认证服务
func NewAdminAuthService(cfg *config.Config, adminRepo repository.AdminUserRepository, sessionRepo repository.AdminSessionRepository, audit *AdminAuditService) *AdminAuthService {
	return &AdminAuthService{
		cfg:         cfg,
		adminRepo:   adminRepo,
		sessionRepo: sessionRepo,
		audit:       audit,
	}
}

// AdminLoginInput 管理员登录输入
type AdminLoginInput struct {
	Email     string
	Password  string
	ClientIP  string
	UserAgent string
	RequestID string
}

// AdminLoginResult 管理员登录结果
type AdminLoginResult struct {
	Admin     *models.AdminUser
	Token     string
	ExpiresAt time.Time
}

// HashPassword 使用 bcrypt 加密密码
func (s *AdminAuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AdminAuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AdminAuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

func (s *AdminAuthService) sessionExpireHours() int {
	if s.cfg == nil || s.cfg.AdminSession.ExpireHours <= 0 {
		return 24
	}
	return s.cfg.AdminSession.ExpireHours
}

// generateSessionToken 生成 64 位十六进制会话令牌
func generateSessionToken() (string, error) {
	buf := make([]byte, adminSessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Login 管理员登录：校验凭据并创建独立会话
func (s *AdminAuthService) Login(input AdminLoginInput) (*AdminLoginResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		s.recordLoginFailure(0, strings.TrimSpace(input.Email), constants.LoginFailReasonInvalidEmail, input)
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		s.recordLoginFailure(0, email, constants.LoginFailReasonInvalidCredentials, input)
		return nil, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(admin.PasswordHash, input.Password); err != nil {
		s.recordLoginFailure(admin.ID, email, constants.LoginFailReasonInvalidCredentials, input)
		return nil, ErrInvalidCredentials
	}

	if !admin.IsActive {
		s.recordLoginFailure(admin.ID, email, constants.LoginFailReasonAccountInactive, input)
		return nil, ErrAccountInactive
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &models.AdminSession{
		AdminID:   admin.ID,
		Token:     token,
		ClientIP:  strings.TrimSpace(input.ClientIP),
		UserAgent: input.UserAgent,
		ExpiresAt: now.Add(time.Duration(s.sessionExpireHours()) * time.Hour),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(admin); err != nil {
		return nil, err
	}

	_ = cache.SetAdminSessionState(context.Background(), token, cache.BuildAdminSessionState(session, admin))

	s.audit.RecordQuiet(AdminAuditRecordInput{
		AdminID:    admin.ID,
		AdminEmail: admin.Email,
		Action:     constants.AdminAuditActionLogin,
		Outcome:    constants.AdminAuditOutcomeSuccess,
		ClientIP:   input.ClientIP,
		UserAgent:  input.UserAgent,
		RequestID:  input.RequestID,
	})
	if err := s.audit.RecordLoginAttempt(AdminLoginAttemptInput{
		AdminID:   admin.ID,
		Email:     email,
		Success:   true,
		ClientIP:  input.ClientIP,
		UserAgent: input.UserAgent,
		RequestID: input.RequestID,
	}); err != nil {
		logFailedAttemptWrite(err, email)
	}

	return &AdminLoginResult{
		Admin:     admin,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// recordLoginFailure 登录失败留痕：一条尝试记录 + 一条失败审计
func (s *AdminAuthService) recordLoginFailure(adminID uint, email, reason string, input AdminLoginInput) {
	if err := s.audit.RecordLoginAttempt(AdminLoginAttemptInput{
		AdminID:    adminID,
		Email:      email,
		Success:    false,
		FailReason: reason,
		ClientIP:   input.ClientIP,
		UserAgent:  input.UserAgent,
		RequestID:  input.RequestID,
	}); err != nil {
		logFailedAttemptWrite(err, email)
	}
	s.audit.RecordQuiet(AdminAuditRecordInput{
		AdminID:    adminID,
		AdminEmail: email,
		Action:     constants.AdminAuditActionLogin,
		Outcome:    constants.AdminAuditOutcomeFailure,
		Detail:     models.JSON{"fail_reason": reason},
		ClientIP:   input.ClientIP,
		UserAgent:  input.UserAgent,
		RequestID:  input.RequestID,
	})
}

// sessionSnapshotUsable 纪元不一致说明快照写入后发生过批量撤销，不可再信
func sessionSnapshotUsable(state *cache.AdminSessionState, currentEpoch int64) bool {
	return state != nil && state.Epoch == currentEpoch
}

// VerifyToken 校验会话令牌，返回管理员与会话
func (s *AdminAuthService) VerifyToken(ctx context.Context, token string) (*models.AdminUser, *models.AdminSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, ErrSessionNotFound
	}

	now := time.Now()
	if state, hit, err := cache.GetAdminSessionState(ctx, token); err == nil && hit && sessionSnapshotUsable(state, cache.AdminSessionEpoch(ctx, state.AdminID)) {
		if state.Revoked {
			return nil, nil, ErrSessionNotFound
		}
		if now.Unix() >= state.ExpiresAt {
			return nil, nil, ErrSessionExpired
		}
		if !state.IsActive {
			return nil, nil, ErrAccountInactive
		}
		admin := &models.AdminUser{
			ID:       state.AdminID,
			Email:    state.Email,
			Role:     state.Role,
			IsActive: state.IsActive,
		}
		session := &models.AdminSession{
			ID:        state.SessionID,
			AdminID:   state.AdminID,
			Token:     token,
			ExpiresAt: time.Unix(state.ExpiresAt, 0),
		}
		return admin, session, nil
	}

	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || session.IsRevoked() {
		return nil, nil, ErrSessionNotFound
	}
	if session.IsExpired(now) {
		return nil, nil, ErrSessionExpired
	}

	admin, err := s.adminRepo.GetByID(session.AdminID)
	if err != nil {
		return nil, nil, err
	}
	if admin == nil || !admin.IsActive {
		return nil, nil, ErrAccountInactive
	}

	_ = cache.SetAdminSessionState(ctx, token, cache.BuildAdminSessionState(session, admin))
	return admin, session, nil
}

// Logout 撤销会话
func (s *AdminAuthService) Logout(ctx context.Context, token string, input AdminLoginInput) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrSessionNotFound
	}

	session, err := s.sessionRepo.GetByToken(token)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}

	now := time.Now()
	if err := s.sessionRepo.Revoke(token, now); err != nil {
		return err
	}
	_ = cache.DelAdminSessionState(ctx, token)

	admin, err := s.adminRepo.GetByID(session.AdminID)
	if err != nil {
		return err
	}
	email := ""
	if admin != nil {
		email = admin.Email
	}
	s.audit.RecordQuiet(AdminAuditRecordInput{
		AdminID:    session.AdminID,
		AdminEmail: email,
		Action:     constants.AdminAuditActionLogout,
		Outcome:    constants.AdminAuditOutcomeSuccess,
		ClientIP:   input.ClientIP,
		UserAgent:  input.UserAgent,
		RequestID:  input.RequestID,
	})
	return nil
}

// ChangePassword 修改管理员密码并撤销其全部会话
func (s *AdminAuthService) ChangePassword(ctx context.Context, adminID uint, oldPassword, newPassword string, input AdminLoginInput) error {
	admin, err := s.adminRepo.GetByID(adminID)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}

	if err := s.VerifyPassword(admin.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	admin.PasswordHash = hashed
	if err := s.adminRepo.Update(admin); err != nil {
		return err
	}

	// 改密后全部会话失效，需重新登录
	now := time.Now()
	if err := s.sessionRepo.RevokeAllByAdmin(adminID, now); err != nil {
		return err
	}
	_ = cache.BumpAdminSessionEpoch(ctx, adminID)

	s.audit.RecordQuiet(AdminAuditRecordInput{
		AdminID:      admin.ID,
		AdminEmail:   admin.Email,
		Action:       constants.AdminAuditActionChangePassword,
		ResourceType: constants.AuditResourceAdmin,
		Outcome:      constants.AdminAuditOutcomeSuccess,
		ClientIP:     input.ClientIP,
		UserAgent:    input.UserAgent,
		RequestID:    input.RequestID,
	})
	return nil
}

// SweepExpiredSessions 清理过期与已撤销会话，返回删除条数
func (s *AdminAuthService) SweepExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpiredBefore(time.Now())
}
