package service

import (
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/repository"
)

// AdminAuditRecordInput 管理员审计记录输入
type AdminAuditRecordInput struct {
	AdminID      uint
	AdminEmail   string
	Action       string
	ResourceType string
	ResourceID   string
	Outcome      string
	Detail       models.JSON
	ClientIP     string
	UserAgent    string
	RequestID    string
}

// AdminLoginAttemptInput 管理员登录尝试记录输入
type AdminLoginAttemptInput struct {
	AdminID    uint
	Email      string
	Success    bool
	FailReason string
	ClientIP   string
	UserAgent  string
	RequestID  string
}

// AdminAuditService 管理员审计服务
// 说明：审计与登录尝试都是追加写；写入失败记日志但不阻断主流程，
// 登录路径除外（登录失败必须留痕，由调用方决定是否忽略）。
type AdminAuditService struct {
	auditRepo   repository.AdminAuditLogRepository
	attemptRepo repository.AdminLoginAttemptRepository
}

// NewAdminAuditService 创建管理员审计服务
func NewAdminAuditService(auditRepo repository.AdminAuditLogRepository, attemptRepo repository.AdminLoginAttemptRepository) *AdminAuditService {
	return &AdminAuditService{
		auditRepo:   auditRepo,
		attemptRepo: attemptRepo,
	}
}

// Record 追加审计日志
func (s *AdminAuditService) Record(input AdminAuditRecordInput) error {
	if s == nil || s.auditRepo == nil {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil
	}
	outcome := strings.TrimSpace(input.Outcome)
	if outcome == "" {
		outcome = constants.AdminAuditOutcomeSuccess
	}

	item := &models.AdminAuditLog{
		AdminID:      input.AdminID,
		AdminEmail:   strings.TrimSpace(input.AdminEmail),
		Action:       action,
		ResourceType: strings.TrimSpace(input.ResourceType),
		ResourceID:   strings.TrimSpace(input.ResourceID),
		Outcome:      outcome,
		DetailJSON:   input.Detail,
		ClientIP:     strings.TrimSpace(input.ClientIP),
		UserAgent:    input.UserAgent,
		RequestID:    strings.TrimSpace(input.RequestID),
		CreatedAt:    time.Now(),
	}
	return s.auditRepo.Create(item)
}

// RecordQuiet 追加审计日志，失败只记运行日志
func (s *AdminAuditService) RecordQuiet(input AdminAuditRecordInput) {
	if err := s.Record(input); err != nil {
		logger.Warnw("admin_audit_record_failed",
			"error", err,
			"action", input.Action,
			"admin_id", input.AdminID,
		)
	}
}

// RecordLoginAttempt 追加登录尝试记录
func (s *AdminAuditService) RecordLoginAttempt(input AdminLoginAttemptInput) error {
	if s == nil || s.attemptRepo == nil {
		return nil
	}

	failReason := strings.ToLower(strings.TrimSpace(input.FailReason))
	if input.Success {
		failReason = ""
	} else if failReason == "" {
		failReason = constants.LoginFailReasonInternalError
	}

	item := &models.AdminLoginAttempt{
		AdminID:    input.AdminID,
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Success:    input.Success,
		FailReason: failReason,
		ClientIP:   strings.TrimSpace(input.ClientIP),
		UserAgent:  input.UserAgent,
		RequestID:  strings.TrimSpace(input.RequestID),
		CreatedAt:  time.Now(),
	}
	return s.attemptRepo.Create(item)
}

// ListAuditLogs 管理端查询审计日志
func (s *AdminAuditService) ListAuditLogs(filter repository.AdminAuditLogListFilter) ([]models.AdminAuditLog, int64, error) {
	if s == nil || s.auditRepo == nil {
		return []models.AdminAuditLog{}, 0, nil
	}
	return s.auditRepo.List(filter)
}

// ListLoginAttempts 管理端查询登录尝试
func (s *AdminAuditService) ListLoginAttempts(filter repository.AdminLoginAttemptListFilter) ([]models.AdminLoginAttempt, int64, error) {
	if s == nil || s.attemptRepo == nil {
		return []models.AdminLoginAttempt{}, 0, nil
	}
	return s.attemptRepo.List(filter)
}
