package i18n

import "github.com/pagespark/pagespark/internal/constants"

// messages 按语言组织的错误/提示文案表
var messages = map[string]map[string]string{
	constants.LocaleEnUS: {
		"error.bad_request":                 "Invalid request",
		"error.unauthorized":                "Unauthorized",
		"error.forbidden":                   "Permission denied",
		"error.not_found":                   "Resource not found",
		"error.internal":                    "Internal server error",
		"error.save_failed":                 "Save failed",
		"error.rate_limited":                "Too many attempts, try again in %d seconds",
		"error.rate_limit_unavailable":      "Rate limiter unavailable",
		"error.login_too_many":              "Too many login attempts, try again in %d seconds",
		"error.admin_login_invalid":         "Invalid email or password",
		"error.admin_inactive":              "This account has been deactivated",
		"error.login_failed":                "Login failed",
		"error.logout_failed":               "Logout failed",
		"error.auth_header_missing":         "Authorization header missing",
		"error.auth_header_invalid":         "Authorization header invalid",
		"error.token_invalid":               "Invalid token",
		"error.session_expired":             "Session expired, sign in again",
		"error.session_not_found":           "Session not found",
		"error.password_old_invalid":        "Current password is incorrect",
		"error.password_weak":               "Password does not meet the policy",
		"error.password_min_length":         "Password must be at least %d characters",
		"error.password_require_upper":      "Password must contain an uppercase letter",
		"error.password_require_lower":      "Password must contain a lowercase letter",
		"error.password_require_number":     "Password must contain a number",
		"error.password_require_special":    "Password must contain a special character",
		"error.captcha_required":            "Captcha is required",
		"error.captcha_invalid":             "Captcha verification failed",
		"error.captcha_config_invalid":      "Captcha is misconfigured",
		"error.captcha_verify_failed":       "Captcha verification failed",
		"error.email_invalid":               "Invalid email address",
		"error.email_exists":                "Email is already registered",
		"error.user_not_found":              "User not found",
		"error.user_disabled":               "This account has been disabled",
		"error.slug_exists":                 "Slug already exists",
		"error.slug_used":                   "Slug is already in use",
		"error.category_not_found":          "Category not found",
		"error.category_in_use":             "Category still has templates",
		"error.category_fetch_failed":       "Failed to fetch categories",
		"error.category_create_failed":      "Failed to create category",
		"error.category_update_failed":      "Failed to update category",
		"error.category_delete_failed":      "Failed to delete category",
		"error.template_not_found":          "Template not found",
		"error.template_not_live":           "Template is not available",
		"error.template_fetch_failed":       "Failed to fetch templates",
		"error.template_create_failed":      "Failed to create template",
		"error.template_update_failed":      "Failed to update template",
		"error.template_delete_failed":      "Failed to delete template",
		"error.template_status_invalid":     "Invalid template status transition",
		"error.template_price_invalid":      "Invalid template price",
		"error.purchase_required":           "Purchase required to download this template",
		"error.project_not_found":           "Project not found",
		"error.project_fetch_failed":        "Failed to fetch projects",
		"error.project_create_failed":       "Failed to create project",
		"error.project_prompt_required":     "A prompt or source template is required",
		"error.subdomain_exists":            "Subdomain is already taken",
		"error.project_not_ready":           "Project is not ready to publish",
		"error.plan_not_found":              "Plan not found",
		"error.plan_fetch_failed":           "Failed to fetch plans",
		"error.newsletter_fetch_failed":     "Failed to fetch subscribers",
		"error.newsletter_subscribed":       "Email is already subscribed",
		"error.newsletter_token_invalid":    "Confirmation link is invalid or expired",
		"error.subscribe_failed":            "Subscription failed",
		"error.payment_not_found":           "Payment not found",
		"error.payment_fetch_failed":        "Failed to fetch payments",
		"error.payment_create_failed":       "Failed to create payment",
		"error.payment_channel_invalid":     "Payment channel is unavailable",
		"error.payment_already_paid":        "Template already purchased",
		"error.payment_free_template":       "Free templates do not require payment",
		"error.webhook_invalid":             "Webhook payload rejected",
		"error.dashboard_fetch_failed":      "Failed to load dashboard data",
		"error.audit_fetch_failed":          "Failed to fetch audit logs",
		"error.admin_not_found":             "Admin not found",
		"error.admin_exists":                "Admin email already exists",
		"error.admin_role_invalid":          "Invalid admin role",
		"error.admin_self_forbidden":        "Operation not allowed on your own account",
		"error.authz_failed":                "Authorization update failed",
		"error.subscription_not_found":      "Subscription not found",
		"error.jwt_secret_missing":          "Authentication is misconfigured",
		"error.token_revoked":               "Token has been revoked",
		"error.user_id_invalid":             "Invalid user identity",
		"error.user_id_type_invalid":        "Invalid user identity",
		"error.admin_id_invalid":            "Invalid admin identity",
		"error.admin_id_type_invalid":       "Invalid admin identity",
		"error.captcha_unavailable":         "Captcha is unavailable",
		"error.captcha_generate_failed":     "Failed to generate captcha",
		"error.payment_invalid":             "Invalid payment request",
		"error.payment_status_invalid":      "Invalid payment status",
		"error.payment_amount_mismatch":     "Payment amount mismatch",
		"error.payment_currency_mismatch":   "Payment currency mismatch",
		"error.payment_gateway_failed":      "Payment gateway request failed",
		"error.dashboard_range_invalid":     "Invalid dashboard time range",
		"error.queue_unavailable":           "Task queue unavailable",
		"error.project_limit_reached":       "Project limit reached, upgrade your plan",
		"error.subdomain_invalid":           "Invalid subdomain",
		"error.template_already_owned":      "Template already purchased",
		"error.plan_inactive":               "Plan is no longer available",
		"error.plan_in_use":                 "Plan still has active subscriptions",
		"error.config_fetch_failed":         "Failed to load site configuration",
		"error.register_failed":             "Registration failed",
		"error.login_invalid":               "Invalid email or password",
		"error.user_fetch_failed":           "Failed to fetch users",
		"error.user_login_log_fetch_failed": "Failed to fetch login history",
	},
	constants.LocaleZhCN: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未登录或登录已过期",
		"error.forbidden":                   "没有操作权限",
		"error.not_found":                   "资源不存在",
		"error.internal":                    "服务器内部错误",
		"error.save_failed":                 "保存失败",
		"error.rate_limited":                "操作过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":      "限流服务不可用",
		"error.login_too_many":              "登录尝试过多，请 %d 秒后重试",
		"error.admin_login_invalid":         "邮箱或密码错误",
		"error.admin_inactive":              "该账号已被停用",
		"error.login_failed":                "登录失败",
		"error.logout_failed":               "退出登录失败",
		"error.auth_header_missing":         "缺少认证头",
		"error.auth_header_invalid":         "认证头格式错误",
		"error.token_invalid":               "无效的令牌",
		"error.session_expired":             "会话已过期，请重新登录",
		"error.session_not_found":           "会话不存在",
		"error.password_old_invalid":        "原密码错误",
		"error.password_weak":               "密码不符合安全策略",
		"error.password_min_length":         "密码长度不能少于 %d 位",
		"error.password_require_upper":      "密码必须包含大写字母",
		"error.password_require_lower":      "密码必须包含小写字母",
		"error.password_require_number":     "密码必须包含数字",
		"error.password_require_special":    "密码必须包含特殊字符",
		"error.captcha_required":            "请完成验证码",
		"error.captcha_invalid":             "验证码错误",
		"error.captcha_config_invalid":      "验证码配置错误",
		"error.captcha_verify_failed":       "验证码校验失败",
		"error.email_invalid":               "邮箱格式错误",
		"error.email_exists":                "邮箱已被注册",
		"error.user_not_found":              "用户不存在",
		"error.user_disabled":               "该账号已被禁用",
		"error.slug_exists":                 "标识已存在",
		"error.slug_used":                   "标识已被占用",
		"error.category_not_found":          "分类不存在",
		"error.category_in_use":             "分类下仍有模板",
		"error.category_fetch_failed":       "获取分类失败",
		"error.category_create_failed":      "创建分类失败",
		"error.category_update_failed":      "更新分类失败",
		"error.category_delete_failed":      "删除分类失败",
		"error.template_not_found":          "模板不存在",
		"error.template_not_live":           "模板暂不可用",
		"error.template_fetch_failed":       "获取模板失败",
		"error.template_create_failed":      "创建模板失败",
		"error.template_update_failed":      "更新模板失败",
		"error.template_delete_failed":      "删除模板失败",
		"error.template_status_invalid":     "模板状态流转不合法",
		"error.template_price_invalid":      "模板价格不合法",
		"error.purchase_required":           "下载该模板需要先购买",
		"error.project_not_found":           "项目不存在",
		"error.project_fetch_failed":        "获取项目失败",
		"error.project_create_failed":       "创建项目失败",
		"error.project_prompt_required":     "需要提供生成提示词或源模板",
		"error.subdomain_exists":            "子域名已被占用",
		"error.project_not_ready":           "项目尚未生成完成",
		"error.plan_not_found":              "套餐不存在",
		"error.plan_fetch_failed":           "获取套餐失败",
		"error.newsletter_fetch_failed":     "获取订阅列表失败",
		"error.newsletter_subscribed":       "该邮箱已订阅",
		"error.newsletter_token_invalid":    "确认链接无效或已过期",
		"error.subscribe_failed":            "订阅失败",
		"error.payment_not_found":           "支付记录不存在",
		"error.payment_fetch_failed":        "获取支付记录失败",
		"error.payment_create_failed":       "创建支付失败",
		"error.payment_channel_invalid":     "支付渠道不可用",
		"error.payment_already_paid":        "模板已购买",
		"error.payment_free_template":       "免费模板无需支付",
		"error.webhook_invalid":             "Webhook 数据校验失败",
		"error.dashboard_fetch_failed":      "加载仪表盘数据失败",
		"error.audit_fetch_failed":          "获取审计日志失败",
		"error.admin_not_found":             "管理员不存在",
		"error.admin_exists":                "管理员邮箱已存在",
		"error.admin_role_invalid":          "管理员角色不合法",
		"error.admin_self_forbidden":        "不能对自己的账号执行该操作",
		"error.authz_failed":                "权限更新失败",
		"error.subscription_not_found":      "订阅不存在",
		"error.jwt_secret_missing":          "认证配置缺失",
		"error.token_revoked":               "令牌已失效",
		"error.user_id_invalid":             "用户身份不合法",
		"error.user_id_type_invalid":        "用户身份不合法",
		"error.admin_id_invalid":            "管理员身份不合法",
		"error.admin_id_type_invalid":       "管理员身份不合法",
		"error.captcha_unavailable":         "验证码服务不可用",
		"error.captcha_generate_failed":     "生成验证码失败",
		"error.payment_invalid":             "支付请求不合法",
		"error.payment_status_invalid":      "支付状态不合法",
		"error.payment_amount_mismatch":     "支付金额不一致",
		"error.payment_currency_mismatch":   "支付币种不一致",
		"error.payment_gateway_failed":      "支付网关请求失败",
		"error.dashboard_range_invalid":     "仪表盘时间范围不合法",
		"error.queue_unavailable":           "任务队列不可用",
		"error.project_limit_reached":       "项目数量已达上限，请升级套餐",
		"error.subdomain_invalid":           "子域名不合法",
		"error.template_already_owned":      "模板已购买",
		"error.plan_inactive":               "套餐已下架",
		"error.plan_in_use":                 "套餐仍有生效中的订阅",
		"error.config_fetch_failed":         "加载站点配置失败",
		"error.register_failed":             "注册失败",
		"error.login_invalid":               "邮箱或密码错误",
		"error.user_fetch_failed":           "获取用户列表失败",
		"error.user_login_log_fetch_failed": "获取登录记录失败",
	},
}
