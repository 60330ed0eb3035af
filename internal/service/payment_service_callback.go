package service

import (
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentCallbackInput 支付回调输入
type PaymentCallbackInput struct {
	PaymentID   uint
	PaymentNo   string
	ChannelID   uint
	Status      string
	ProviderRef string
	Amount      models.Money
	Currency    string
	PaidAt      *time.Time
	Payload     models.JSON
}

// HandleCallback 处理支付回调
// 已成功的支付只补元信息，不重复落账。
func (s *PaymentService) HandleCallback(input PaymentCallbackInput) (*models.Payment, error) {
	status := normalizePaymentStatus(input.Status)
	if !isPaymentStatusValid(status) {
		return nil, ErrPaymentStatusInvalid
	}

	log := paymentLogger(
		"payment_id", input.PaymentID,
		"target_status", status,
		"callback_channel_id", input.ChannelID,
		"callback_payment_no", strings.TrimSpace(input.PaymentNo),
		"callback_provider_ref", strings.TrimSpace(input.ProviderRef),
		"callback_currency", strings.ToUpper(strings.TrimSpace(input.Currency)),
		"callback_amount", input.Amount.String(),
	)
	log.Infow("payment_callback_received")

	payment, err := s.resolveCallbackPayment(input)
	if err != nil {
		log.Errorw("payment_callback_payment_fetch_failed", "error", err)
		return nil, ErrPaymentUpdateFailed
	}
	if payment == nil {
		log.Warnw("payment_callback_payment_not_found")
		return nil, ErrPaymentNotFound
	}

	if input.ChannelID != 0 && input.ChannelID != payment.ChannelID {
		log.Warnw("payment_callback_channel_mismatch",
			"stored_channel_id", payment.ChannelID,
			"callback_channel_id", input.ChannelID,
		)
		return nil, ErrPaymentInvalid
	}
	if input.PaymentNo != "" && input.PaymentNo != payment.PaymentNo {
		log.Warnw("payment_callback_payment_no_mismatch",
			"stored_payment_no", payment.PaymentNo,
			"callback_payment_no", input.PaymentNo,
		)
		return nil, ErrPaymentInvalid
	}
	if input.Currency != "" && strings.ToUpper(strings.TrimSpace(input.Currency)) != strings.ToUpper(strings.TrimSpace(payment.Currency)) {
		log.Warnw("payment_callback_currency_mismatch",
			"stored_currency", payment.Currency,
			"callback_currency", input.Currency,
		)
		return nil, ErrPaymentCurrencyMismatch
	}
	if !input.Amount.Decimal.IsZero() && input.Amount.Decimal.Cmp(payment.Amount.Decimal) != 0 {
		log.Warnw("payment_callback_amount_mismatch",
			"stored_amount", payment.Amount.String(),
			"callback_amount", input.Amount.String(),
		)
		return nil, ErrPaymentAmountMismatch
	}

	// 幂等处理：已成功的不再回退状态
	if payment.Status == constants.PaymentStatusSuccess {
		log.Infow("payment_callback_idempotent_success", "current_status", payment.Status)
		return s.updateCallbackMeta(payment, constants.PaymentStatusSuccess, input)
	}
	if payment.Status == status {
		log.Infow("payment_callback_idempotent_same_status", "current_status", payment.Status)
		return s.updateCallbackMeta(payment, status, input)
	}

	previousStatus := payment.Status
	now := time.Now()
	updated, err := s.applyPaymentUpdate(payment, status, input, now)
	if err != nil {
		log.Errorw("payment_callback_apply_failed",
			"current_status", payment.Status,
			"error", err,
		)
		return nil, err
	}
	if updated.Status == constants.PaymentStatusSuccess {
		s.enqueueReceiptEmailAsync(updated, log)
	}
	log.Infow("payment_callback_processed",
		"previous_status", previousStatus,
		"new_status", updated.Status,
	)
	return updated, nil
}

func (s *PaymentService) resolveCallbackPayment(input PaymentCallbackInput) (*models.Payment, error) {
	if input.PaymentID != 0 {
		return s.paymentRepo.GetByID(input.PaymentID)
	}
	if paymentNo := strings.TrimSpace(input.PaymentNo); paymentNo != "" {
		return s.paymentRepo.GetByPaymentNo(paymentNo)
	}
	if providerRef := strings.TrimSpace(input.ProviderRef); providerRef != "" {
		return s.paymentRepo.GetLatestByProviderRef(providerRef)
	}
	return nil, ErrPaymentInvalid
}

func (s *PaymentService) updateCallbackMeta(payment *models.Payment, status string, input PaymentCallbackInput) (*models.Payment, error) {
	updated := false
	if input.ProviderRef != "" && payment.ProviderRef == "" {
		payment.ProviderRef = input.ProviderRef
		updated = true
	}
	if input.Payload != nil {
		payment.ProviderPayload = input.Payload
		updated = true
	}
	if payment.Status == constants.PaymentStatusSuccess && payment.PaidAt == nil && input.PaidAt != nil {
		payment.PaidAt = input.PaidAt
		updated = true
	}
	if updated {
		now := time.Now()
		payment.CallbackAt = &now
		payment.UpdatedAt = now
		if err := s.paymentRepo.Update(payment); err != nil {
			return nil, ErrPaymentUpdateFailed
		}
	}
	return payment, nil
}

func (s *PaymentService) applyPaymentUpdate(payment *models.Payment, status string, input PaymentCallbackInput, now time.Time) (*models.Payment, error) {
	switch status {
	case constants.PaymentStatusSuccess:
		paidAt := now
		if input.PaidAt != nil {
			paidAt = *input.PaidAt
		}
		payment.PaidAt = &paidAt
	case constants.PaymentStatusExpired:
		payment.ExpiredAt = &now
	}

	payment.Status = status
	payment.CallbackAt = &now
	payment.UpdatedAt = now
	if input.ProviderRef != "" {
		payment.ProviderRef = input.ProviderRef
	}
	if input.Payload != nil {
		payment.ProviderPayload = input.Payload
	}

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		paymentRepo := s.paymentRepo.WithTx(tx)
		if err := paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		if status == constants.PaymentStatusSuccess {
			return s.applyPaymentSuccess(tx, payment, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// applyPaymentSuccess 在事务内落账：授予模板购买或开通订阅周期
func (s *PaymentService) applyPaymentSuccess(tx *gorm.DB, payment *models.Payment, now time.Time) error {
	paidAt := now
	if payment.PaidAt != nil {
		paidAt = *payment.PaidAt
	}

	switch payment.Purpose {
	case constants.PaymentPurposeTemplate:
		if payment.TemplateID == nil || *payment.TemplateID == 0 {
			return ErrPaymentInvalid
		}
		purchaseRepo := s.purchaseRepo.WithTx(tx)
		existing, err := purchaseRepo.GetByUserAndTemplate(payment.UserID, *payment.TemplateID)
		if err != nil {
			return ErrPaymentUpdateFailed
		}
		if existing == nil {
			paymentID := payment.ID
			purchase := &models.TemplatePurchase{
				UserID:     payment.UserID,
				TemplateID: *payment.TemplateID,
				PaymentID:  &paymentID,
				Amount:     payment.Amount,
				Currency:   payment.Currency,
			}
			if err := purchaseRepo.Create(purchase); err != nil {
				return ErrPaymentUpdateFailed
			}
		}
		if s.analyticsSvc != nil {
			if err := s.analyticsSvc.RecordPurchaseTx(tx, *payment.TemplateID, payment.Amount, paidAt); err != nil {
				return err
			}
		}
		return nil
	case constants.PaymentPurposeSubscription:
		if payment.PlanID == nil || *payment.PlanID == 0 {
			return ErrPaymentInvalid
		}
		if s.subscriptionSvc == nil {
			return ErrPaymentUpdateFailed
		}
		_, err := s.subscriptionSvc.ApplyPaidPeriodTx(tx, payment.UserID, *payment.PlanID, payment.ProviderType, "", payment.ProviderRef, paidAt)
		return err
	default:
		return ErrPaymentInvalid
	}
}

func (s *PaymentService) enqueueReceiptEmailAsync(payment *models.Payment, log *zap.SugaredLogger) {
	if s.queueClient == nil || payment == nil {
		return
	}
	if err := s.queueClient.EnqueuePaymentReceiptEmail(queue.PaymentReceiptEmailPayload{
		PaymentID: payment.ID,
	}); err != nil {
		log.Warnw("payment_enqueue_receipt_email_failed",
			"payment_id", payment.ID,
			"payment_no", payment.PaymentNo,
			"error", err,
		)
	}
}

// ExpirePayment 过期兜底：delayed 任务触发，仍未支付则置为过期
func (s *PaymentService) ExpirePayment(paymentID uint) (*models.Payment, error) {
	if paymentID == 0 {
		return nil, ErrPaymentInvalid
	}
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		return nil, ErrPaymentUpdateFailed
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	switch payment.Status {
	case constants.PaymentStatusInitiated, constants.PaymentStatusPending:
	default:
		return payment, nil
	}
	if payment.ExpiredAt != nil && payment.ExpiredAt.After(time.Now()) {
		return payment, nil
	}

	now := time.Now()
	payment.Status = constants.PaymentStatusExpired
	payment.ExpiredAt = &now
	payment.UpdatedAt = now
	if err := s.paymentRepo.Update(payment); err != nil {
		return nil, ErrPaymentUpdateFailed
	}
	paymentLogger("payment_id", payment.ID, "payment_no", payment.PaymentNo).Infow("payment_expired")
	return payment, nil
}
