package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/provider"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNewsletterConfirm, c.handleNewsletterConfirm)
	mux.HandleFunc(queue.TaskProjectGenerate, c.handleProjectGenerate)
	mux.HandleFunc(queue.TaskTemplateDeploy, c.handleTemplateDeploy)
	mux.HandleFunc(queue.TaskPaymentExpire, c.handlePaymentExpire)
	mux.HandleFunc(queue.TaskPaymentReceiptEmail, c.handlePaymentReceiptEmail)
	mux.HandleFunc(queue.TaskAdminSessionSweep, c.handleAdminSessionSweep)
}

func (c *Consumer) handleNewsletterConfirm(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_newsletter_confirm_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.NewsletterConfirmPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_newsletter_confirm_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubscriberID == 0 {
		logger.Debugw("worker_newsletter_confirm_skip_invalid_payload", "subscriber_id", payload.SubscriberID)
		return nil
	}
	subscriber, err := c.NewsletterService.GetByID(payload.SubscriberID)
	if err != nil {
		logger.Warnw("worker_newsletter_confirm_fetch_failed", "subscriber_id", payload.SubscriberID, "error", err)
		return err
	}
	if subscriber == nil {
		logger.Debugw("worker_newsletter_confirm_skip_not_found", "subscriber_id", payload.SubscriberID)
		return nil
	}
	if subscriber.Status != constants.NewsletterStatusPending || subscriber.ConfirmToken == "" {
		logger.Debugw("worker_newsletter_confirm_skip_status",
			"subscriber_id", subscriber.ID,
			"status", subscriber.Status,
		)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_newsletter_confirm_skip_email_service_nil", "subscriber_id", subscriber.ID)
		return nil
	}
	confirmURL := c.NewsletterService.ConfirmURL(subscriber.ConfirmToken)
	if err := c.EmailService.SendNewsletterConfirm(subscriber.Email, confirmURL, subscriber.Locale); err != nil {
		logger.Warnw("worker_newsletter_confirm_send_failed",
			"subscriber_id", subscriber.ID,
			"email", subscriber.Email,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleProjectGenerate(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_project_generate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ProjectGeneratePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_project_generate_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProjectID == 0 {
		logger.Debugw("worker_project_generate_skip_invalid_payload", "project_id", payload.ProjectID)
		return nil
	}
	project, err := c.ProjectRepo.GetByID(payload.ProjectID)
	if err != nil {
		logger.Warnw("worker_project_generate_fetch_failed", "project_id", payload.ProjectID, "error", err)
		return err
	}
	if project == nil {
		logger.Debugw("worker_project_generate_skip_not_found", "project_id", payload.ProjectID)
		return nil
	}

	siteConfig, err := c.buildSiteConfig(project)
	if err != nil {
		logger.Warnw("worker_project_generate_build_failed", "project_id", project.ID, "error", err)
		if markErr := c.ProjectService.MarkFailed(project.ID, err.Error()); markErr != nil {
			logger.Warnw("worker_project_generate_mark_failed_error", "project_id", project.ID, "error", markErr)
		}
		return nil
	}

	if err := c.ProjectService.MarkReady(project.ID, siteConfig); err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			logger.Debugw("worker_project_generate_skip_not_found", "project_id", project.ID)
			return nil
		case errors.Is(err, service.ErrProjectStatusInvalid):
			logger.Debugw("worker_project_generate_skip_invalid_status", "project_id", project.ID, "status", project.Status)
			return nil
		default:
			logger.Warnw("worker_project_generate_mark_ready_failed", "project_id", project.ID, "error", err)
			return err
		}
	}
	return nil
}

// buildSiteConfig 根据来源模板与提示词生成站点配置
func (c *Consumer) buildSiteConfig(project *models.Project) (models.JSON, error) {
	theme := "default"
	sections := []string{"hero", "features", "footer"}
	if project.TemplateID != nil {
		template, err := c.TemplateRepo.GetByID(*project.TemplateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, service.ErrTemplateNotFound
		}
		theme = template.Framework
		if template.Slug != "" {
			theme = template.Slug
		}
	}
	prompt := strings.TrimSpace(project.Prompt)
	if strings.Contains(strings.ToLower(prompt), "pricing") {
		sections = append(sections, "pricing")
	}
	if strings.Contains(strings.ToLower(prompt), "contact") {
		sections = append(sections, "contact")
	}
	return models.JSON{
		"name":      project.Name,
		"subdomain": project.Subdomain,
		"theme":     theme,
		"prompt":    prompt,
		"sections":  sections,
	}, nil
}

func (c *Consumer) handleTemplateDeploy(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_template_deploy_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TemplateDeployPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_template_deploy_unmarshal_failed", "error", err)
		return err
	}
	if payload.TemplateID == 0 {
		logger.Debugw("worker_template_deploy_skip_invalid_payload", "template_id", payload.TemplateID)
		return nil
	}
	if err := c.TemplateService.MarkLive(payload.TemplateID); err != nil {
		if errors.Is(err, service.ErrTemplateStatusInvalid) {
			logger.Debugw("worker_template_deploy_skip_invalid_status", "template_id", payload.TemplateID)
			return nil
		}
		logger.Warnw("worker_template_deploy_failed", "template_id", payload.TemplateID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handlePaymentExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentExpirePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_expire_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == 0 {
		logger.Debugw("worker_payment_expire_skip_invalid_payload", "payment_id", payload.PaymentID)
		return nil
	}
	if _, err := c.PaymentService.ExpirePayment(payload.PaymentID); err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			logger.Debugw("worker_payment_expire_skip_not_found", "payment_id", payload.PaymentID)
			return nil
		default:
			logger.Warnw("worker_payment_expire_failed", "payment_id", payload.PaymentID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handlePaymentReceiptEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_receipt_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentReceiptEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_receipt_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == 0 {
		logger.Debugw("worker_payment_receipt_skip_invalid_payload", "payment_id", payload.PaymentID)
		return nil
	}
	payment, err := c.PaymentService.GetPayment(payload.PaymentID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			logger.Debugw("worker_payment_receipt_skip_not_found", "payment_id", payload.PaymentID)
			return nil
		}
		logger.Warnw("worker_payment_receipt_fetch_failed", "payment_id", payload.PaymentID, "error", err)
		return err
	}
	if payment.Status != constants.PaymentStatusSuccess {
		logger.Debugw("worker_payment_receipt_skip_not_success", "payment_id", payment.ID, "status", payment.Status)
		return nil
	}
	user, err := c.UserRepo.GetByID(payment.UserID)
	if err != nil {
		logger.Warnw("worker_payment_receipt_fetch_user_failed", "payment_id", payment.ID, "user_id", payment.UserID, "error", err)
		return err
	}
	if user == nil || strings.TrimSpace(user.Email) == "" {
		logger.Debugw("worker_payment_receipt_skip_empty_receiver", "payment_id", payment.ID, "user_id", payment.UserID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_payment_receipt_skip_email_service_nil", "payment_id", payment.ID)
		return nil
	}
	input := service.PaymentReceiptInput{
		PaymentNo: payment.PaymentNo,
		Purpose:   payment.Purpose,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		ItemName:  c.resolveReceiptItemName(payment, user.Locale),
	}
	if err := c.EmailService.SendPaymentReceipt(user.Email, input, user.Locale); err != nil {
		logger.Warnw("worker_payment_receipt_send_failed",
			"payment_id", payment.ID,
			"payment_no", payment.PaymentNo,
			"receiver_email", user.Email,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) resolveReceiptItemName(payment *models.Payment, locale string) string {
	switch payment.Purpose {
	case constants.PaymentPurposeTemplate:
		if payment.TemplateID == nil {
			return ""
		}
		template, err := c.TemplateRepo.GetByID(*payment.TemplateID)
		if err != nil || template == nil {
			return ""
		}
		if name := localizedText(template.TitleJSON, locale); name != "" {
			return name
		}
		return template.Slug
	case constants.PaymentPurposeSubscription:
		if payment.PlanID == nil {
			return ""
		}
		plan, err := c.PlanRepo.GetByID(*payment.PlanID)
		if err != nil || plan == nil {
			return ""
		}
		if name := localizedText(plan.NameJSON, locale); name != "" {
			return name
		}
		return plan.Code
	}
	return ""
}

func localizedText(j models.JSON, locale string) string {
	if len(j) == 0 {
		return ""
	}
	if value, ok := j[locale].(string); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	for _, candidate := range constants.SupportedLocales {
		if value, ok := j[candidate].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	for _, value := range j {
		if text, ok := value.(string); ok && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}

func (c *Consumer) handleAdminSessionSweep(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_admin_session_sweep_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	removed, err := c.AdminAuthService.SweepExpiredSessions()
	if err != nil {
		logger.Warnw("worker_admin_session_sweep_failed", "error", err)
		return err
	}
	if removed > 0 {
		logger.Infow("worker_admin_session_sweep_done", "removed", removed)
	}
	return nil
}
