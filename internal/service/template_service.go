package service

import (
	"strconv"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"
)

// TemplateService 模板业务服务
type TemplateService struct {
	repo         repository.TemplateRepository
	categoryRepo repository.CategoryRepository
	purchaseRepo repository.TemplatePurchaseRepository
	queueClient  *queue.Client
	audit        *AdminAuditService
}

// NewTemplateService 创建模板服务
func NewTemplateService(repo repository.TemplateRepository, categoryRepo repository.CategoryRepository, purchaseRepo repository.TemplatePurchaseRepository, queueClient *queue.Client, audit *AdminAuditService) *TemplateService {
	return &TemplateService{
		repo:         repo,
		categoryRepo: categoryRepo,
		purchaseRepo: purchaseRepo,
		queueClient:  queueClient,
		audit:        audit,
	}
}

// TemplateInput 创建/更新模板输入
type TemplateInput struct {
	CategoryID      uint
	Slug            string
	TitleJSON       map[string]interface{}
	DescriptionJSON map[string]interface{}
	PreviewImage    string
	DemoURL         string
	Framework       string
	Tags            []string
	PriceAmount     string
	Currency        string
	IsFeatured      bool
	SortOrder       int
}

func normalizeFramework(raw string) string {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case constants.FrameworkNext:
		return constants.FrameworkNext
	case constants.FrameworkAstro:
		return constants.FrameworkAstro
	default:
		return constants.FrameworkPlain
	}
}

// ListPublic 市场公开模板列表（仅 live）
func (s *TemplateService) ListPublic(categoryID, framework, search string, featuredOnly bool, page, pageSize int) ([]models.Template, int64, error) {
	return s.repo.List(repository.TemplateListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Framework:    normalizeFrameworkFilter(framework),
		Search:       search,
		FeaturedOnly: featuredOnly,
		LiveOnly:     true,
		WithCategory: true,
	})
}

func normalizeFrameworkFilter(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case constants.FrameworkNext, constants.FrameworkAstro, constants.FrameworkPlain:
		return raw
	}
	return ""
}

// ListFeatured 市场精选模板
func (s *TemplateService) ListFeatured(limit int) ([]models.Template, error) {
	return s.repo.ListFeatured(limit)
}

// GetPublicBySlug 按 slug 获取公开模板（仅 live）
func (s *TemplateService) GetPublicBySlug(slug string) (*models.Template, error) {
	template, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if template.Status != constants.TemplateStatusLive {
		return nil, ErrTemplateNotLive
	}
	return template, nil
}

// ListAdmin 后台模板列表（全部状态）
func (s *TemplateService) ListAdmin(categoryID, status, framework, search string, page, pageSize int) ([]models.Template, int64, error) {
	return s.repo.List(repository.TemplateListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Status:       strings.TrimSpace(status),
		Framework:    normalizeFrameworkFilter(framework),
		Search:       search,
		WithCategory: true,
	})
}

// GetAdminByID 后台获取模板详情
func (s *TemplateService) GetAdminByID(id uint) (*models.Template, error) {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	return template, nil
}

// Create 创建模板（初始为 draft）
func (s *TemplateService) Create(input TemplateInput, operator *models.AdminUser, meta AdminLoginInput) (*models.Template, error) {
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		return nil, ErrSlugExists
	}
	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugExists
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	price, err := models.NewMoneyFromString(input.PriceAmount)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.CurrencyUSD
	}

	template := &models.Template{
		CategoryID:      input.CategoryID,
		Slug:            slug,
		TitleJSON:       models.JSON(input.TitleJSON),
		DescriptionJSON: models.JSON(input.DescriptionJSON),
		PreviewImage:    strings.TrimSpace(input.PreviewImage),
		DemoURL:         strings.TrimSpace(input.DemoURL),
		Framework:       normalizeFramework(input.Framework),
		Tags:            models.StringArray(input.Tags),
		PriceAmount:     price,
		Currency:        currency,
		Status:          constants.TemplateStatusDraft,
		IsFeatured:      input.IsFeatured,
		SortOrder:       input.SortOrder,
	}
	if err := s.repo.Create(template); err != nil {
		return nil, err
	}

	s.recordAudit(operator, constants.AdminAuditActionCreate, template.ID, meta, models.JSON{"slug": template.Slug})
	return template, nil
}

// Update 更新模板
func (s *TemplateService) Update(id uint, input TemplateInput, operator *models.AdminUser, meta AdminLoginInput) (*models.Template, error) {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	slug := strings.TrimSpace(input.Slug)
	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrSlugExists
	}

	category, err := s.categoryRepo.GetByID(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	price, err := models.NewMoneyFromString(input.PriceAmount)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = template.Currency
	}

	template.CategoryID = input.CategoryID
	template.Slug = slug
	template.TitleJSON = models.JSON(input.TitleJSON)
	template.DescriptionJSON = models.JSON(input.DescriptionJSON)
	template.PreviewImage = strings.TrimSpace(input.PreviewImage)
	template.DemoURL = strings.TrimSpace(input.DemoURL)
	template.Framework = normalizeFramework(input.Framework)
	template.Tags = models.StringArray(input.Tags)
	template.PriceAmount = price
	template.Currency = currency
	template.IsFeatured = input.IsFeatured
	template.SortOrder = input.SortOrder

	if err := s.repo.Update(template); err != nil {
		return nil, err
	}

	s.recordAudit(operator, constants.AdminAuditActionUpdate, template.ID, meta, models.JSON{"slug": template.Slug})
	return template, nil
}

// Deploy 触发模板部署
// draft/disabled -> deploying，并投递部署任务；成功部署由 worker 置为 live
func (s *TemplateService) Deploy(id uint, operator *models.AdminUser, meta AdminLoginInput) (*models.Template, error) {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	var moved bool
	switch template.Status {
	case constants.TemplateStatusDraft:
		moved, err = s.repo.UpdateStatus(id, constants.TemplateStatusDraft, constants.TemplateStatusDeploying)
	case constants.TemplateStatusDisabled:
		moved, err = s.repo.UpdateStatus(id, constants.TemplateStatusDisabled, constants.TemplateStatusDeploying)
	default:
		return nil, ErrTemplateStatusInvalid
	}
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrTemplateStatusInvalid
	}

	if err := s.queueClient.EnqueueTemplateDeploy(queue.TemplateDeployPayload{TemplateID: id}); err != nil {
		// 投递失败回滚到原状态，部署必须有 worker 接手
		if _, rollbackErr := s.repo.UpdateStatus(id, constants.TemplateStatusDeploying, template.Status); rollbackErr != nil {
			return nil, rollbackErr
		}
		return nil, ErrQueueUnavailable
	}

	template.Status = constants.TemplateStatusDeploying
	s.recordAudit(operator, constants.AdminAuditActionDeploy, template.ID, meta, models.JSON{"slug": template.Slug})
	return template, nil
}

// MarkLive 部署完成回调（worker 调用）
func (s *TemplateService) MarkLive(id uint) error {
	moved, err := s.repo.UpdateStatus(id, constants.TemplateStatusDeploying, constants.TemplateStatusLive)
	if err != nil {
		return err
	}
	if !moved {
		return ErrTemplateStatusInvalid
	}
	return nil
}

// MarkDeployFailed 部署失败回滚到 draft（worker 调用）
func (s *TemplateService) MarkDeployFailed(id uint) error {
	moved, err := s.repo.UpdateStatus(id, constants.TemplateStatusDeploying, constants.TemplateStatusDraft)
	if err != nil {
		return err
	}
	if !moved {
		return ErrTemplateStatusInvalid
	}
	return nil
}

// Disable 下架模板
func (s *TemplateService) Disable(id uint, operator *models.AdminUser, meta AdminLoginInput) error {
	moved, err := s.repo.UpdateStatus(id, constants.TemplateStatusLive, constants.TemplateStatusDisabled)
	if err != nil {
		return err
	}
	if !moved {
		return ErrTemplateStatusInvalid
	}
	s.recordAudit(operator, constants.AdminAuditActionUpdate, id, meta, models.JSON{"status": constants.TemplateStatusDisabled})
	return nil
}

// Delete 删除模板（软删除）
func (s *TemplateService) Delete(id uint, operator *models.AdminUser, meta AdminLoginInput) error {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if template == nil {
		return ErrTemplateNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.recordAudit(operator, constants.AdminAuditActionDelete, id, meta, models.JSON{"slug": template.Slug})
	return nil
}

// HasPurchased 判断用户是否已购买模板
func (s *TemplateService) HasPurchased(userID, templateID uint) (bool, error) {
	purchase, err := s.purchaseRepo.GetByUserAndTemplate(userID, templateID)
	if err != nil {
		return false, err
	}
	return purchase != nil, nil
}

// ListPurchasesByUser 用户已购模板列表
func (s *TemplateService) ListPurchasesByUser(userID uint, page, pageSize int) ([]models.TemplatePurchase, int64, error) {
	return s.purchaseRepo.ListByUser(userID, page, pageSize)
}

func (s *TemplateService) recordAudit(operator *models.AdminUser, action string, templateID uint, meta AdminLoginInput, detail models.JSON) {
	if s.audit == nil {
		return
	}
	input := AdminAuditRecordInput{
		Action:       action,
		ResourceType: constants.AuditResourceTemplate,
		ResourceID:   strconv.FormatUint(uint64(templateID), 10),
		Detail:       detail,
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
