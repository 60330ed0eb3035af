package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"
)

// 未订阅用户可持有的项目数
const freeProjectLimit = 1

// 子域名 3-63 位，小写字母数字与中划线，首尾不能是中划线
var subdomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

// 保留子域名，禁止用户占用
var reservedSubdomains = map[string]struct{}{
	"www":   {},
	"api":   {},
	"admin": {},
	"app":   {},
	"mail":  {},
	"cdn":   {},
}

// ProjectService 站点项目服务
type ProjectService struct {
	cfg              *config.Config
	repo             repository.ProjectRepository
	templateRepo     repository.TemplateRepository
	subscriptionRepo repository.SubscriptionRepository
	queueClient      *queue.Client
}

// NewProjectService 创建项目服务
func NewProjectService(cfg *config.Config, repo repository.ProjectRepository, templateRepo repository.TemplateRepository, subscriptionRepo repository.SubscriptionRepository, queueClient *queue.Client) *ProjectService {
	return &ProjectService{
		cfg:              cfg,
		repo:             repo,
		templateRepo:     templateRepo,
		subscriptionRepo: subscriptionRepo,
		queueClient:      queueClient,
	}
}

// CreateProjectInput 创建项目输入
type CreateProjectInput struct {
	Name       string
	Subdomain  string
	Prompt     string
	TemplateID *uint
}

// NormalizeSubdomain 归一化并校验子域名
func NormalizeSubdomain(raw string) (string, error) {
	subdomain := strings.ToLower(strings.TrimSpace(raw))
	if !subdomainPattern.MatchString(subdomain) {
		return "", ErrSubdomainInvalid
	}
	if _, reserved := reservedSubdomains[subdomain]; reserved {
		return "", ErrSubdomainInvalid
	}
	return subdomain, nil
}

// SiteURL 项目对外访问地址
func (s *ProjectService) SiteURL(project *models.Project) string {
	if project == nil {
		return ""
	}
	base := strings.TrimSpace(s.cfg.Generator.SiteBaseDomain)
	if base == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.%s", project.Subdomain, base)
}

// projectLimitFor 返回用户当前的项目上限（0 不限制）
func (s *ProjectService) projectLimitFor(userID uint) (int, error) {
	subscription, err := s.subscriptionRepo.GetActiveByUser(userID, time.Now())
	if err != nil {
		return 0, err
	}
	if subscription == nil {
		return freeProjectLimit, nil
	}
	return subscription.Plan.ProjectLimit, nil
}

// Create 创建项目并投递生成任务
func (s *ProjectService) Create(userID uint, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	subdomain, err := NormalizeSubdomain(input.Subdomain)
	if err != nil {
		return nil, err
	}

	limit, err := s.projectLimitFor(userID)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		count, countErr := s.repo.CountByUser(userID)
		if countErr != nil {
			return nil, countErr
		}
		if count >= int64(limit) {
			return nil, ErrProjectLimitReached
		}
	}

	existing, err := s.repo.GetBySubdomain(subdomain)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSubdomainExists
	}

	if input.TemplateID != nil {
		template, templateErr := s.templateRepo.GetByID(*input.TemplateID)
		if templateErr != nil {
			return nil, templateErr
		}
		if template == nil {
			return nil, ErrTemplateNotFound
		}
		if template.Status != constants.TemplateStatusLive {
			return nil, ErrTemplateNotLive
		}
	}

	project := &models.Project{
		UserID:     userID,
		TemplateID: input.TemplateID,
		Name:       name,
		Subdomain:  subdomain,
		Prompt:     strings.TrimSpace(input.Prompt),
		Status:     constants.ProjectStatusGenerating,
	}
	if err := s.repo.Create(project); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueProjectGenerate(queue.ProjectGeneratePayload{ProjectID: project.ID}); err != nil {
		// 没有 worker 接手的项目直接标记失败，避免永久卡在 generating
		project.Status = constants.ProjectStatusFailed
		project.FailReason = "queue_unavailable"
		if updateErr := s.repo.Update(project); updateErr != nil {
			return nil, updateErr
		}
		return nil, ErrQueueUnavailable
	}
	return project, nil
}

// Get 获取项目（仅限属主）
func (s *ProjectService) Get(userID, projectID uint) (*models.Project, error) {
	project, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}
	if project == nil || project.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// ListByUser 用户项目列表
func (s *ProjectService) ListByUser(userID uint, page, pageSize int) ([]models.Project, int64, error) {
	return s.repo.ListByUser(userID, page, pageSize)
}

// ListAdmin 后台项目列表
func (s *ProjectService) ListAdmin(filter repository.ProjectListFilter) ([]models.Project, int64, error) {
	return s.repo.ListAdmin(filter)
}

// MarkReady 生成完成（worker 调用）
func (s *ProjectService) MarkReady(projectID uint, siteConfig models.JSON) error {
	project, err := s.repo.GetByID(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if project.Status != constants.ProjectStatusGenerating {
		return ErrProjectStatusInvalid
	}

	now := time.Now()
	project.Status = constants.ProjectStatusReady
	project.SiteConfigJSON = siteConfig
	project.FailReason = ""
	project.GeneratedAt = &now
	return s.repo.Update(project)
}

// MarkFailed 生成失败（worker 调用）
func (s *ProjectService) MarkFailed(projectID uint, reason string) error {
	project, err := s.repo.GetByID(projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	project.Status = constants.ProjectStatusFailed
	project.FailReason = strings.TrimSpace(reason)
	return s.repo.Update(project)
}

// Publish 发布项目（ready -> published）
func (s *ProjectService) Publish(userID, projectID uint) (*models.Project, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}
	moved, err := s.repo.UpdateStatus(projectID, constants.ProjectStatusReady, constants.ProjectStatusPublished)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrProjectStatusInvalid
	}
	now := time.Now()
	project.Status = constants.ProjectStatusPublished
	project.PublishedAt = &now
	if err := s.repo.Update(project); err != nil {
		return nil, err
	}
	return project, nil
}

// Regenerate 重新生成（failed/ready -> generating）
func (s *ProjectService) Regenerate(userID, projectID uint, prompt string) (*models.Project, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}
	switch project.Status {
	case constants.ProjectStatusFailed, constants.ProjectStatusReady:
	default:
		return nil, ErrProjectStatusInvalid
	}

	project.Status = constants.ProjectStatusGenerating
	project.FailReason = ""
	if trimmed := strings.TrimSpace(prompt); trimmed != "" {
		project.Prompt = trimmed
	}
	if err := s.repo.Update(project); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueProjectGenerate(queue.ProjectGeneratePayload{ProjectID: project.ID}); err != nil {
		project.Status = constants.ProjectStatusFailed
		project.FailReason = "queue_unavailable"
		if updateErr := s.repo.Update(project); updateErr != nil {
			return nil, updateErr
		}
		return nil, ErrQueueUnavailable
	}
	return project, nil
}

// Delete 删除项目（仅限属主）
func (s *ProjectService) Delete(userID, projectID uint) error {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return err
	}
	return s.repo.Delete(project.ID)
}
