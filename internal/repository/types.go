package repository

import "time"

// TemplateListFilter 查询模板列表的过滤条件
type TemplateListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Status       string
	Framework    string
	Search       string
	FeaturedOnly bool
	LiveOnly     bool
	WithCategory bool
	OrderBy      string
}

// TemplatePurchaseListFilter 查询模板购买记录的过滤条件
type TemplatePurchaseListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	TemplateID uint
}

// ProjectListFilter 查询项目列表的过滤条件
type ProjectListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	TemplateID  uint
	Status      string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NewsletterListFilter 查询邮件订阅列表的过滤条件
type NewsletterListFilter struct {
	Page        int
	PageSize    int
	Status      string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PlanListFilter 查询订阅计划列表的过滤条件
type PlanListFilter struct {
	Page       int
	PageSize   int
	ActiveOnly bool
}

// SubscriptionListFilter 查询订阅列表的过滤条件
type SubscriptionListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	PlanID       uint
	Status       string
	ProviderType string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// PaymentListFilter 查询支付列表的过滤条件
type PaymentListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	TemplateID   uint
	PlanID       uint
	ChannelID    uint
	Purpose      string
	ProviderType string
	Status       string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// PaymentChannelListFilter 查询支付渠道列表的过滤条件
type PaymentChannelListFilter struct {
	Page         int
	PageSize     int
	ProviderType string
	ActiveOnly   bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page          int
	PageSize      int
	Keyword       string
	Status        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	LastLoginFrom *time.Time
	LastLoginTo   *time.Time
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AdminAuditLogListFilter 查询管理员审计日志列表的过滤条件
type AdminAuditLogListFilter struct {
	Page         int
	PageSize     int
	AdminID      uint
	Action       string
	ResourceType string
	ResourceID   string
	Outcome      string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// AdminLoginAttemptListFilter 查询管理员登录尝试列表的过滤条件
type AdminLoginAttemptListFilter struct {
	Page        int
	PageSize    int
	AdminID     uint
	Email       string
	Success     *bool
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AdminSessionListFilter 查询管理员会话列表的过滤条件
type AdminSessionListFilter struct {
	Page       int
	PageSize   int
	AdminID    uint
	ActiveOnly bool
}
