package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pagespark/pagespark/internal/authz"
	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/config"
	adminhandlers "github.com/pagespark/pagespark/internal/http/handlers/admin"
	publichandlers "github.com/pagespark/pagespark/internal/http/handlers/public"
	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ps"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/config", publicHandler.GetConfig)
			public.GET("/categories", publicHandler.GetCategories)
			public.GET("/plans", publicHandler.GetPlans)
			public.GET("/templates", publicHandler.GetTemplates)
			public.GET("/templates/featured", publicHandler.GetFeaturedTemplates)
			public.GET("/templates/:slug", publicHandler.GetTemplateBySlug)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 邮件订阅
		newsletter := apiV1.Group("/newsletter")
		{
			newsletter.POST("/subscribe", publicHandler.SubscribeNewsletter)
			newsletter.GET("/confirm", publicHandler.ConfirmNewsletter)
			newsletter.POST("/unsubscribe", publicHandler.UnsubscribeNewsletter)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)
			user.GET("/me/login-logs", publicHandler.GetMyLoginLogs)
			user.GET("/me/templates", publicHandler.GetMyTemplates)
			user.POST("/templates/:id/acquire", publicHandler.AcquireFreeTemplate)
			user.GET("/templates/:slug/download", publicHandler.DownloadTemplate)
			user.POST("/projects", publicHandler.CreateProject)
			user.GET("/projects", publicHandler.GetMyProjects)
			user.GET("/projects/:id", publicHandler.GetMyProject)
			user.POST("/projects/:id/publish", publicHandler.PublishProject)
			user.POST("/projects/:id/regenerate", publicHandler.RegenerateProject)
			user.DELETE("/projects/:id", publicHandler.DeleteMyProject)
			user.POST("/payments", publicHandler.CreatePayment)
			user.GET("/payments", publicHandler.GetMyPayments)
			user.GET("/payments/:id", publicHandler.GetMyPayment)
			user.GET("/subscription", publicHandler.GetMySubscription)
			user.POST("/subscription/cancel", publicHandler.CancelMySubscription)
		}

		apiV1.POST("/payments/webhook/stripe", publicHandler.StripeWebhook)
		apiV1.POST("/payments/webhook/wechat", publicHandler.WechatWebhook)
	}

	// 管理员接口
	admin := r.Group("/api/admin")
	{
		admin.POST("/auth/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

		// 会话鉴权（verify/logout 不经 RBAC）
		session := admin.Group("")
		session.Use(AdminSessionAuthMiddleware(c.AdminAuthService))
		{
			session.GET("/auth/verify", adminHandler.AdminVerify)
			session.POST("/auth/logout", adminHandler.AdminLogout)
		}

		authorized := admin.Group("")
		authorized.Use(AdminSessionAuthMiddleware(c.AdminAuthService), AdminRBACMiddleware(c.AuthzService))
		{
			authorized.PUT("/password", adminHandler.UpdateAdminPassword)

			// 仪表盘
			authorized.GET("/dashboard/overview", adminHandler.GetDashboardOverview)
			authorized.GET("/dashboard/trends", adminHandler.GetDashboardTrends)
			authorized.GET("/dashboard/rankings", adminHandler.GetDashboardRankings)

			// 分类管理
			authorized.GET("/categories", adminHandler.GetAdminCategories)
			authorized.POST("/categories", adminHandler.CreateCategory)
			authorized.PUT("/categories/:id", adminHandler.UpdateCategory)
			authorized.DELETE("/categories/:id", adminHandler.DeleteCategory)

			// 模板管理
			authorized.GET("/templates", adminHandler.GetAdminTemplates)
			authorized.GET("/templates/:id", adminHandler.GetAdminTemplate)
			authorized.POST("/templates", adminHandler.CreateTemplate)
			authorized.PUT("/templates/:id", adminHandler.UpdateTemplate)
			authorized.POST("/templates/:id/deploy", adminHandler.DeployTemplate)
			authorized.POST("/templates/:id/disable", adminHandler.DisableTemplate)
			authorized.DELETE("/templates/:id", adminHandler.DeleteTemplate)

			// 套餐管理
			authorized.GET("/plans", adminHandler.GetAdminPlans)
			authorized.POST("/plans", adminHandler.CreatePlan)
			authorized.PUT("/plans/:id", adminHandler.UpdatePlan)
			authorized.DELETE("/plans/:id", adminHandler.DeletePlan)

			// 用户管理
			authorized.GET("/users", adminHandler.GetAdminUsers)
			authorized.GET("/users/:id", adminHandler.GetAdminUser)
			authorized.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			authorized.GET("/user-login-logs", adminHandler.GetAdminUserLoginLogs)

			// 项目管理
			authorized.GET("/projects", adminHandler.GetAdminProjects)

			// 邮件订阅管理
			authorized.GET("/newsletter/subscribers", adminHandler.GetAdminNewsletterSubscribers)
			authorized.GET("/newsletter/stats", adminHandler.GetAdminNewsletterStats)
			authorized.DELETE("/newsletter/subscribers/:id", adminHandler.DeleteNewsletterSubscriber)

			// 支付渠道与支付记录
			authorized.POST("/payment-channels", adminHandler.CreatePaymentChannel)
			authorized.GET("/payment-channels", adminHandler.GetAdminPaymentChannels)
			authorized.GET("/payment-channels/:id", adminHandler.GetAdminPaymentChannel)
			authorized.PUT("/payment-channels/:id", adminHandler.UpdatePaymentChannel)
			authorized.DELETE("/payment-channels/:id", adminHandler.DeletePaymentChannel)
			authorized.GET("/payments", adminHandler.GetAdminPayments)
			authorized.GET("/payments/:id", adminHandler.GetAdminPayment)
			authorized.GET("/subscriptions", adminHandler.GetAdminSubscriptions)

			// 审计与登录记录
			authorized.GET("/audit-logs", adminHandler.GetAdminAuditLogs)
			authorized.GET("/login-attempts", adminHandler.GetAdminLoginAttempts)

			// 权限管理
			authorized.GET("/authz/me", adminHandler.GetAuthzMe)
			authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
			authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
			authorized.DELETE("/authz/roles/:role", adminHandler.DeleteAuthzRole)
			authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
			authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
			authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
			authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
			authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
			authorized.PUT("/authz/admins/:id", adminHandler.UpdateAuthzAdmin)
			authorized.DELETE("/authz/admins/:id", adminHandler.DeleteAuthzAdmin)
			authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
			authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
			authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/admin/") {
			continue
		}
		if strings.HasPrefix(item.Path, "/api/admin/auth/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
