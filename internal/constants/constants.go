package constants

// 管理员角色常量
const (
	AdminRoleSuperAdmin = "super_admin"
	AdminRoleAdmin      = "admin"
	AdminRoleModerator  = "moderator"
)

// 管理员审计动作常量
const (
	AdminAuditActionLogin          = "login"
	AdminAuditActionLogout         = "logout"
	AdminAuditActionChangePassword = "change_password"
	AdminAuditActionCreate         = "create"
	AdminAuditActionUpdate         = "update"
	AdminAuditActionDelete         = "delete"
	AdminAuditActionDeploy         = "deploy"
)

// 管理员审计结果常量
const (
	AdminAuditOutcomeSuccess = "success"
	AdminAuditOutcomeFailure = "failure"
)

// 管理员审计资源类型常量
const (
	AuditResourceAdmin      = "admin"
	AuditResourceSession    = "session"
	AuditResourceTemplate   = "template"
	AuditResourceCategory   = "category"
	AuditResourceUser       = "user"
	AuditResourcePlan       = "plan"
	AuditResourceChannel    = "payment_channel"
	AuditResourceNewsletter = "newsletter_subscriber"
	AuditResourceAuthz      = "authz_policy"
)

// 登录失败原因常量
const (
	LoginFailReasonBadRequest         = "bad_request"
	LoginFailReasonInvalidEmail       = "invalid_email"
	LoginFailReasonInvalidCredentials = "invalid_credentials"
	LoginFailReasonAccountInactive    = "account_inactive"
	LoginFailReasonCaptchaRequired    = "captcha_required"
	LoginFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginFailReasonUserDisabled       = "user_disabled"
	LoginFailReasonInternalError      = "internal_error"
)

// 登录日志状态常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录日志来源常量
const (
	LoginLogSourceWeb = "web"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 模板状态常量
const (
	TemplateStatusDraft     = "draft"
	TemplateStatusDeploying = "deploying"
	TemplateStatusLive      = "live"
	TemplateStatusDisabled  = "disabled"
)

// 模板前端框架常量
const (
	FrameworkNext  = "next"
	FrameworkAstro = "astro"
	FrameworkPlain = "plain"
)

// 币种常量
const (
	CurrencyUSD = "USD"
	CurrencyCNY = "CNY"
)

// 项目状态常量
const (
	ProjectStatusGenerating = "generating"
	ProjectStatusReady      = "ready"
	ProjectStatusPublished  = "published"
	ProjectStatusFailed     = "failed"
)

// 订阅状态常量
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// 订阅计划周期常量
const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// 支付状态常量
const (
	PaymentStatusInitiated = "initiated"
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusExpired   = "expired"
)

// 支付用途常量
const (
	PaymentPurposeTemplate     = "template"
	PaymentPurposeSubscription = "subscription"
)

// 支付提供方常量
const (
	PaymentProviderStripe    = "stripe"
	PaymentProviderWechatpay = "wechatpay"
)

// 支付交互方式常量
const (
	PaymentInteractionQR       = "qr"
	PaymentInteractionRedirect = "redirect"
)

// Newsletter 订阅状态常量
const (
	NewsletterStatusPending      = "pending"
	NewsletterStatusConfirmed    = "confirmed"
	NewsletterStatusUnsubscribed = "unsubscribed"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneAdminLogin = "admin_login"
	CaptchaSceneUserLogin  = "login"
)

// 队列常量
const (
	QueueDefault            = "default"
	QueueCritical           = "critical"
	TaskNewsletterConfirm   = "newsletter:confirm_email"
	TaskProjectGenerate     = "project:generate"
	TaskTemplateDeploy      = "template:deploy"
	TaskPaymentExpire       = "payment:timeout_expire"
	TaskPaymentReceiptEmail = "payment:receipt_email"
	TaskAdminSessionSweep   = "admin_session:sweep"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "ps"
)

// 站点语言常量
const (
	LocaleEnUS = "en-US"
	LocaleZhCN = "zh-CN"
)

// 支持的站点语言顺序（含回退顺序）
var SupportedLocales = []string{LocaleEnUS, LocaleZhCN}

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)
