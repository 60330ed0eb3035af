package provider

import (
	"github.com/pagespark/pagespark/internal/authz"
	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminUserRepo         repository.AdminUserRepository
	AdminSessionRepo      repository.AdminSessionRepository
	AdminAuditLogRepo     repository.AdminAuditLogRepository
	AdminLoginAttemptRepo repository.AdminLoginAttemptRepository
	UserRepo              repository.UserRepository
	UserLoginLogRepo      repository.UserLoginLogRepository
	CategoryRepo          repository.CategoryRepository
	TemplateRepo          repository.TemplateRepository
	TemplatePurchaseRepo  repository.TemplatePurchaseRepository
	TemplateAnalyticsRepo repository.TemplateAnalyticsRepository
	ProjectRepo           repository.ProjectRepository
	NewsletterRepo        repository.NewsletterRepository
	PlanRepo              repository.PlanRepository
	SubscriptionRepo      repository.SubscriptionRepository
	PaymentRepo           repository.PaymentRepository
	PaymentChannelRepo    repository.PaymentChannelRepository
	DashboardRepo         repository.DashboardRepository

	// Services
	AuthzService        *authz.Service
	AdminAuditService   *service.AdminAuditService
	AdminAuthService    *service.AdminAuthService
	AdminUserService    *service.AdminUserService
	UserAuthService     *service.UserAuthService
	UserLoginLogService *service.UserLoginLogService
	EmailService        *service.EmailService
	CaptchaService      *service.CaptchaService
	CategoryService     *service.CategoryService
	TemplateService     *service.TemplateService
	AnalyticsService    *service.AnalyticsService
	ProjectService      *service.ProjectService
	NewsletterService   *service.NewsletterService
	PlanService         *service.PlanService
	SubscriptionService *service.SubscriptionService
	PaymentService      *service.PaymentService
	DashboardService    *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminUserRepo = repository.NewAdminUserRepository(db)
	c.AdminSessionRepo = repository.NewAdminSessionRepository(db)
	c.AdminAuditLogRepo = repository.NewAdminAuditLogRepository(db)
	c.AdminLoginAttemptRepo = repository.NewAdminLoginAttemptRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.UserLoginLogRepo = repository.NewUserLoginLogRepository(db)
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.TemplateRepo = repository.NewTemplateRepository(db)
	c.TemplatePurchaseRepo = repository.NewTemplatePurchaseRepository(db)
	c.TemplateAnalyticsRepo = repository.NewTemplateAnalyticsRepository(db)
	c.ProjectRepo = repository.NewProjectRepository(db)
	c.NewsletterRepo = repository.NewNewsletterRepository(db)
	c.PlanRepo = repository.NewPlanRepository(db)
	c.SubscriptionRepo = repository.NewSubscriptionRepository(db)
	c.PaymentRepo = repository.NewPaymentRepository(db)
	c.PaymentChannelRepo = repository.NewPaymentChannelRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)

	c.AdminAuditService = service.NewAdminAuditService(c.AdminAuditLogRepo, c.AdminLoginAttemptRepo)
	c.AdminAuthService = service.NewAdminAuthService(c.Config, c.AdminUserRepo, c.AdminSessionRepo, c.AdminAuditService)
	c.AdminUserService = service.NewAdminUserService(c.AdminUserRepo, c.AdminSessionRepo, c.AdminAuthService, c.AdminAuditService)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.UserLoginLogService = service.NewUserLoginLogService(c.UserLoginLogRepo)

	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.TemplateService = service.NewTemplateService(c.TemplateRepo, c.CategoryRepo, c.TemplatePurchaseRepo, c.QueueClient, c.AdminAuditService)
	c.AnalyticsService = service.NewAnalyticsService(c.TemplateAnalyticsRepo, c.TemplateRepo)
	c.ProjectService = service.NewProjectService(c.Config, c.ProjectRepo, c.TemplateRepo, c.SubscriptionRepo, c.QueueClient)
	c.NewsletterService = service.NewNewsletterService(c.Config, c.NewsletterRepo, c.QueueClient)
	c.PlanService = service.NewPlanService(c.PlanRepo)
	c.SubscriptionService = service.NewSubscriptionService(c.SubscriptionRepo, c.PlanRepo)
	c.PaymentService = service.NewPaymentService(
		c.PaymentRepo,
		c.PaymentChannelRepo,
		c.TemplateRepo,
		c.PlanRepo,
		c.TemplatePurchaseRepo,
		c.SubscriptionService,
		c.AnalyticsService,
		c.QueueClient,
		&c.Config.Payment,
	)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
