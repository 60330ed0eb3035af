package service

import "errors"

// 服务层哨兵错误，handler 层据此映射响应码与多语言文案。
var (
	ErrNotFound = errors.New("resource not found")

	// 认证与账号
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account inactive")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrEmailExists        = errors.New("email already exists")
	ErrUserDisabled       = errors.New("user disabled")
	ErrAdminRoleInvalid   = errors.New("admin role invalid")
	ErrLastSuperAdmin     = errors.New("cannot remove the last super admin")

	// 验证码
	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	// 目录与模板
	ErrSlugExists            = errors.New("slug already exists")
	ErrCategoryInUse         = errors.New("category has templates")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrTemplateNotFound      = errors.New("template not found")
	ErrTemplateNotLive       = errors.New("template not live")
	ErrTemplateStatusInvalid = errors.New("template status transition invalid")
	ErrTemplateAlreadyOwned  = errors.New("template already purchased")
	ErrTemplateNotPurchased  = errors.New("template not purchased")

	// 项目
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name required")
	ErrSubdomainInvalid     = errors.New("subdomain invalid")
	ErrSubdomainExists      = errors.New("subdomain already exists")
	ErrProjectLimitReached  = errors.New("project limit reached")
	ErrProjectStatusInvalid = errors.New("project status transition invalid")

	// Newsletter
	ErrNewsletterSubscribed   = errors.New("email already subscribed")
	ErrNewsletterTokenInvalid = errors.New("confirm token invalid")
	ErrNewsletterTokenExpired = errors.New("confirm token expired")

	// 订阅计划
	ErrPlanNotFound   = errors.New("plan not found")
	ErrPlanInactive   = errors.New("plan inactive")
	ErrPlanInUse      = errors.New("plan has subscriptions")
	ErrPlanCodeExists = errors.New("plan code already exists")

	// 支付
	ErrPaymentInvalid                = errors.New("payment request invalid")
	ErrPaymentNotFound               = errors.New("payment not found")
	ErrPaymentCreateFailed           = errors.New("payment create failed")
	ErrPaymentUpdateFailed           = errors.New("payment update failed")
	ErrPaymentCurrencyMismatch       = errors.New("payment currency mismatch")
	ErrPaymentStatusInvalid          = errors.New("payment status invalid")
	ErrPaymentChannelNotFound        = errors.New("payment channel not found")
	ErrPaymentChannelInactive        = errors.New("payment channel inactive")
	ErrPaymentChannelConfigInvalid   = errors.New("payment channel config invalid")
	ErrPaymentProviderNotSupported   = errors.New("payment provider not supported")
	ErrPaymentAmountMismatch         = errors.New("payment amount mismatch")
	ErrPaymentGatewayRequestFailed   = errors.New("payment gateway request failed")
	ErrPaymentGatewayResponseInvalid = errors.New("payment gateway response invalid")
	ErrWebhookSignatureInvalid       = errors.New("webhook signature invalid")

	// 邮件
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")

	// 其他
	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")
	ErrQueueUnavailable      = errors.New("queue unavailable")
)
