package queue

import (
	"encoding/json"

	"github.com/pagespark/pagespark/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNewsletterConfirm 订阅确认邮件任务
	TaskNewsletterConfirm = constants.TaskNewsletterConfirm
	// TaskProjectGenerate 项目站点生成任务
	TaskProjectGenerate = constants.TaskProjectGenerate
	// TaskTemplateDeploy 模板部署任务
	TaskTemplateDeploy = constants.TaskTemplateDeploy
	// TaskPaymentExpire 支付单超时关闭任务
	TaskPaymentExpire = constants.TaskPaymentExpire
	// TaskPaymentReceiptEmail 支付回执邮件任务
	TaskPaymentReceiptEmail = constants.TaskPaymentReceiptEmail
	// TaskAdminSessionSweep 管理员过期会话清理任务
	TaskAdminSessionSweep = constants.TaskAdminSessionSweep
)

// NewsletterConfirmPayload 订阅确认邮件任务载荷
type NewsletterConfirmPayload struct {
	SubscriberID uint `json:"subscriber_id"`
}

// ProjectGeneratePayload 项目生成任务载荷
type ProjectGeneratePayload struct {
	ProjectID uint `json:"project_id"`
}

// TemplateDeployPayload 模板部署任务载荷
type TemplateDeployPayload struct {
	TemplateID uint `json:"template_id"`
}

// PaymentExpirePayload 支付单超时任务载荷
type PaymentExpirePayload struct {
	PaymentID uint `json:"payment_id"`
}

// PaymentReceiptEmailPayload 支付回执邮件任务载荷
type PaymentReceiptEmailPayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewNewsletterConfirmTask 创建订阅确认邮件任务
func NewNewsletterConfirmTask(payload NewsletterConfirmPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNewsletterConfirm, body), nil
}

// NewProjectGenerateTask 创建项目生成任务
func NewProjectGenerateTask(payload ProjectGeneratePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProjectGenerate, body), nil
}

// NewTemplateDeployTask 创建模板部署任务
func NewTemplateDeployTask(payload TemplateDeployPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTemplateDeploy, body), nil
}

// NewPaymentExpireTask 创建支付单超时任务
func NewPaymentExpireTask(payload PaymentExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentExpire, body), nil
}

// NewPaymentReceiptEmailTask 创建支付回执邮件任务
func NewPaymentReceiptEmailTask(payload PaymentReceiptEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReceiptEmail, body), nil
}

// NewAdminSessionSweepTask 创建过期会话清理任务
func NewAdminSessionSweepTask() *asynq.Task {
	return asynq.NewTask(TaskAdminSessionSweep, nil)
}
