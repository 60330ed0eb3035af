package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"
)

// AdminUserService 管理员账号管理
type AdminUserService struct {
	repo        repository.AdminUserRepository
	sessionRepo repository.AdminSessionRepository
	auth        *AdminAuthService
	audit       *AdminAuditService
}

// NewAdminUserService 创建管理员账号服务
func NewAdminUserService(repo repository.AdminUserRepository, sessionRepo repository.AdminSessionRepository, auth *AdminAuthService, audit *AdminAuditService) *AdminUserService {
	return &AdminUserService{repo: repo, sessionRepo: sessionRepo, auth: auth, audit: audit}
}

// AdminUserInput 创建/更新管理员输入
type AdminUserInput struct {
	Email    string
	Name     string
	Password string
	Role     string
	IsActive *bool
}

func validAdminRole(role string) bool {
	switch role {
	case constants.AdminRoleSuperAdmin, constants.AdminRoleAdmin, constants.AdminRoleModerator:
		return true
	}
	return false
}

// List 获取管理员列表
func (s *AdminUserService) List() ([]models.AdminUser, error) {
	return s.repo.List()
}

// Get 获取单个管理员
func (s *AdminUserService) Get(id uint) (*models.AdminUser, error) {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}
	return admin, nil
}

// Create 创建管理员账号
func (s *AdminUserService) Create(input AdminUserInput, operator *models.AdminUser, meta AdminLoginInput) (*models.AdminUser, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = constants.AdminRoleAdmin
	}
	if !validAdminRole(role) {
		return nil, ErrAdminRoleInvalid
	}
	if err := s.auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	admin := &models.AdminUser{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if input.IsActive != nil {
		admin.IsActive = *input.IsActive
	}
	if err := s.repo.Create(admin); err != nil {
		return nil, err
	}

	s.recordChange(operator, constants.AdminAuditActionCreate, admin, meta, map[string]interface{}{
		"email": admin.Email,
		"role":  admin.Role,
	})
	return admin, nil
}

// Update 更新管理员资料与角色
// 不允许把最后一个可用超级管理员降级或禁用
func (s *AdminUserService) Update(id uint, input AdminUserInput, operator *models.AdminUser, meta AdminLoginInput) (*models.AdminUser, error) {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrNotFound
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = admin.Role
	}
	if !validAdminRole(role) {
		return nil, ErrAdminRoleInvalid
	}

	nextActive := admin.IsActive
	if input.IsActive != nil {
		nextActive = *input.IsActive
	}

	losesSuperAdmin := admin.Role == constants.AdminRoleSuperAdmin && admin.IsActive &&
		(role != constants.AdminRoleSuperAdmin || !nextActive)
	if losesSuperAdmin {
		count, countErr := s.repo.CountActiveByRole(constants.AdminRoleSuperAdmin)
		if countErr != nil {
			return nil, countErr
		}
		if count <= 1 {
			return nil, ErrLastSuperAdmin
		}
	}

	if email := strings.TrimSpace(input.Email); email != "" && !strings.EqualFold(email, admin.Email) {
		normalized, emailErr := normalizeEmail(email)
		if emailErr != nil {
			return nil, ErrInvalidEmail
		}
		existing, getErr := s.repo.GetByEmail(normalized)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil && existing.ID != admin.ID {
			return nil, ErrEmailExists
		}
		admin.Email = normalized
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		admin.Name = name
	}
	if input.Password != "" {
		if err := s.auth.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
		hash, hashErr := s.auth.HashPassword(input.Password)
		if hashErr != nil {
			return nil, hashErr
		}
		admin.PasswordHash = hash
	}
	admin.Role = role
	admin.IsActive = nextActive

	if err := s.repo.Update(admin); err != nil {
		return nil, err
	}

	// 禁用或改密后吊销该管理员的全部会话
	if !admin.IsActive || input.Password != "" {
		if err := s.sessionRepo.RevokeAllByAdmin(admin.ID, time.Now()); err != nil {
			return nil, err
		}
		_ = cache.BumpAdminSessionEpoch(context.Background(), admin.ID)
	}

	s.recordChange(operator, constants.AdminAuditActionUpdate, admin, meta, map[string]interface{}{
		"role":      admin.Role,
		"is_active": admin.IsActive,
	})
	return admin, nil
}

// Delete 删除管理员账号
func (s *AdminUserService) Delete(id uint, operator *models.AdminUser, meta AdminLoginInput) error {
	admin, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if admin == nil {
		return ErrNotFound
	}
	if admin.Role == constants.AdminRoleSuperAdmin && admin.IsActive {
		count, countErr := s.repo.CountActiveByRole(constants.AdminRoleSuperAdmin)
		if countErr != nil {
			return countErr
		}
		if count <= 1 {
			return ErrLastSuperAdmin
		}
	}

	if err := s.sessionRepo.RevokeAllByAdmin(admin.ID, time.Now()); err != nil {
		return err
	}
	_ = cache.BumpAdminSessionEpoch(context.Background(), admin.ID)
	if err := s.repo.Delete(admin.ID); err != nil {
		return err
	}

	s.recordChange(operator, constants.AdminAuditActionDelete, admin, meta, map[string]interface{}{
		"email": admin.Email,
	})
	return nil
}

func (s *AdminUserService) recordChange(operator *models.AdminUser, action string, target *models.AdminUser, meta AdminLoginInput, detail map[string]interface{}) {
	if s.audit == nil {
		return
	}
	input := AdminAuditRecordInput{
		Action:       action,
		ResourceType: constants.AuditResourceAdmin,
		ResourceID:   strconv.FormatUint(uint64(target.ID), 10),
		Detail:       models.JSON(detail),
		ClientIP:     meta.ClientIP,
		UserAgent:    meta.UserAgent,
		RequestID:    meta.RequestID,
	}
	if operator != nil {
		input.AdminID = operator.ID
		input.AdminEmail = operator.Email
	}
	s.audit.RecordQuiet(input)
}
