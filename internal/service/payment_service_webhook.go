package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/payment/stripe"
	"github.com/pagespark/pagespark/internal/payment/wechatpay"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/shopspring/decimal"
)

// WebhookCallbackInput Webhook 回调输入。
type WebhookCallbackInput struct {
	ChannelID uint
	Headers   map[string]string
	Body      []byte
	Context   context.Context
}

// HandleStripeWebhook 处理 Stripe webhook。
func (s *PaymentService) HandleStripeWebhook(input WebhookCallbackInput) (*models.Payment, string, error) {
	log := paymentLogger(
		"provider", constants.PaymentProviderStripe,
		"channel_id", input.ChannelID,
		"body_size", len(input.Body),
	)

	candidates, err := s.resolveWebhookChannels(input.ChannelID, constants.PaymentProviderStripe)
	if err != nil {
		log.Warnw("payment_webhook_resolve_channels_failed", "error", err)
		return nil, "", err
	}

	var lastErr error
	for i := range candidates {
		channel := candidates[i]
		cfg, err := stripe.ParseConfig(channel.ConfigJSON)
		if err != nil {
			mappedErr := fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}
		if err := stripe.ValidateConfig(cfg); err != nil {
			mappedErr := fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}

		result, err := stripe.VerifyAndParseWebhook(cfg, input.Headers, input.Body, time.Now())
		if err != nil {
			mappedErr := mapStripeGatewayError(err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}
		log.Infow("payment_webhook_event_parsed",
			"channel_id", channel.ID,
			"event_type", result.EventType,
			"event_id", result.EventID,
			"provider_ref", result.ProviderRef,
		)

		if handled, err := s.handleStripeSubscriptionEvent(result); handled {
			return nil, result.EventType, err
		}

		payment, err := s.findStripeWebhookPayment(channel.ID, result)
		if err != nil {
			if errors.Is(err, ErrPaymentNotFound) {
				log.Infow("payment_webhook_payment_not_found",
					"channel_id", channel.ID,
					"event_type", result.EventType,
					"event_id", result.EventID,
					"provider_ref", result.ProviderRef,
				)
				return nil, result.EventType, nil
			}
			log.Warnw("payment_webhook_payment_lookup_failed",
				"channel_id", channel.ID,
				"event_type", result.EventType,
				"provider_ref", result.ProviderRef,
				"error", err,
			)
			return nil, result.EventType, err
		}

		updated, err := s.handleStripeWebhookCallback(channel.ID, payment, result)
		if err != nil {
			log.Warnw("payment_webhook_callback_apply_failed",
				"channel_id", channel.ID,
				"payment_id", payment.ID,
				"event_type", result.EventType,
				"provider_ref", result.ProviderRef,
				"error", err,
			)
			return nil, result.EventType, err
		}
		log.Infow("payment_webhook_processed",
			"channel_id", channel.ID,
			"payment_id", updated.ID,
			"event_type", result.EventType,
			"event_id", result.EventID,
			"provider_ref", result.ProviderRef,
			"status", updated.Status,
		)
		return updated, result.EventType, nil
	}

	if lastErr != nil {
		log.Warnw("payment_webhook_verify_failed_all_channels", "error", lastErr)
		return nil, "", lastErr
	}
	log.Warnw("payment_webhook_no_channel_matched")
	return nil, "", ErrPaymentGatewayResponseInvalid
}

// HandleWechatWebhook 处理微信支付回调。
func (s *PaymentService) HandleWechatWebhook(input WebhookCallbackInput) (*models.Payment, string, error) {
	log := paymentLogger(
		"provider", constants.PaymentProviderWechatpay,
		"channel_id", input.ChannelID,
		"body_size", len(input.Body),
	)
	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}

	candidates, err := s.resolveWebhookChannels(input.ChannelID, constants.PaymentProviderWechatpay)
	if err != nil {
		log.Warnw("payment_webhook_resolve_channels_failed", "error", err)
		return nil, "", err
	}

	var lastErr error
	for i := range candidates {
		channel := candidates[i]
		cfg, err := wechatpay.ParseConfig(channel.ConfigJSON)
		if err != nil {
			mappedErr := fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}
		if err := wechatpay.ValidateConfig(cfg, channel.InteractionMode); err != nil {
			mappedErr := fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}

		result, err := wechatpay.VerifyAndDecodeWebhook(ctx, cfg, input.Headers, input.Body)
		if err != nil {
			mappedErr := mapWechatGatewayError(err)
			if input.ChannelID != 0 {
				return nil, "", mappedErr
			}
			lastErr = mappedErr
			continue
		}

		payment, err := s.findWechatWebhookPayment(channel.ID, result)
		if err != nil {
			if errors.Is(err, ErrPaymentNotFound) {
				log.Infow("payment_webhook_payment_not_found",
					"channel_id", channel.ID,
					"event_type", result.EventType,
					"provider_ref", result.TransactionID,
					"payment_no", result.PaymentNo,
				)
				return nil, result.EventType, nil
			}
			log.Warnw("payment_webhook_payment_lookup_failed",
				"channel_id", channel.ID,
				"event_type", result.EventType,
				"provider_ref", result.TransactionID,
				"error", err,
			)
			return nil, result.EventType, err
		}

		updated, err := s.handleWechatWebhookCallback(channel.ID, payment, result)
		if err != nil {
			log.Warnw("payment_webhook_callback_apply_failed",
				"channel_id", channel.ID,
				"payment_id", payment.ID,
				"event_type", result.EventType,
				"provider_ref", result.TransactionID,
				"error", err,
			)
			return nil, result.EventType, err
		}
		log.Infow("payment_webhook_processed",
			"channel_id", channel.ID,
			"payment_id", updated.ID,
			"event_type", result.EventType,
			"provider_ref", result.TransactionID,
			"payment_no", result.PaymentNo,
			"status", updated.Status,
		)
		return updated, result.EventType, nil
	}

	if lastErr != nil {
		log.Warnw("payment_webhook_verify_failed_all_channels", "error", lastErr)
		return nil, "", lastErr
	}
	log.Warnw("payment_webhook_no_channel_matched")
	return nil, "", ErrPaymentGatewayResponseInvalid
}

func (s *PaymentService) resolveWebhookChannels(channelID uint, providerType string) ([]models.PaymentChannel, error) {
	if channelID != 0 {
		channel, err := s.channelRepo.GetByID(channelID)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if channel == nil {
			return nil, ErrPaymentChannelNotFound
		}
		if strings.ToLower(strings.TrimSpace(channel.ProviderType)) != providerType {
			return nil, ErrPaymentProviderNotSupported
		}
		return []models.PaymentChannel{*channel}, nil
	}

	channels, _, err := s.channelRepo.List(repository.PaymentChannelListFilter{
		ProviderType: providerType,
		ActiveOnly:   true,
	})
	if err != nil {
		return nil, ErrPaymentUpdateFailed
	}
	if len(channels) == 0 {
		return nil, ErrPaymentChannelNotFound
	}
	return channels, nil
}

// handleStripeSubscriptionEvent 订阅生命周期事件不对应支付单，直接驱动订阅状态。
func (s *PaymentService) handleStripeSubscriptionEvent(result *stripe.WebhookResult) (bool, error) {
	if result == nil || s.subscriptionSvc == nil {
		return false, nil
	}
	eventType := strings.ToLower(strings.TrimSpace(result.EventType))
	providerRef := strings.TrimSpace(result.ProviderRef)
	switch eventType {
	case "customer.subscription.deleted":
		err := s.subscriptionSvc.CancelByProviderRef(providerRef)
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return true, err
	case "invoice.payment_failed":
		err := s.subscriptionSvc.MarkPastDue(providerRef)
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return true, err
	default:
		return false, nil
	}
}

func (s *PaymentService) findStripeWebhookPayment(channelID uint, result *stripe.WebhookResult) (*models.Payment, error) {
	if result == nil {
		return nil, ErrPaymentInvalid
	}
	if result.PaymentID > 0 {
		payment, err := s.paymentRepo.GetByID(result.PaymentID)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment != nil && payment.ChannelID == channelID {
			return payment, nil
		}
	}
	if paymentNo := strings.TrimSpace(result.PaymentNo); paymentNo != "" {
		payment, err := s.paymentRepo.GetByPaymentNo(paymentNo)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment != nil && payment.ChannelID == channelID {
			return payment, nil
		}
	}

	for _, ref := range []string{
		strings.TrimSpace(result.ProviderRef),
		strings.TrimSpace(result.SessionID),
		strings.TrimSpace(result.PaymentIntentID),
	} {
		if ref == "" {
			continue
		}
		payment, err := s.paymentRepo.GetLatestByProviderRef(ref)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment == nil {
			continue
		}
		if payment.ChannelID != channelID {
			continue
		}
		return payment, nil
	}
	return nil, ErrPaymentNotFound
}

func (s *PaymentService) handleStripeWebhookCallback(channelID uint, payment *models.Payment, result *stripe.WebhookResult) (*models.Payment, error) {
	if payment == nil || result == nil {
		return nil, ErrPaymentInvalid
	}
	amount := models.Money{}
	if strings.TrimSpace(result.Amount) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(result.Amount))
		if err == nil {
			amount = models.NewMoneyFromDecimal(parsed)
		}
	}
	payload := models.JSON{}
	if result.Raw != nil {
		payload = models.JSON(result.Raw)
	}
	status := strings.TrimSpace(result.Status)
	if status == "" {
		status = constants.PaymentStatusPending
	}
	return s.HandleCallback(PaymentCallbackInput{
		PaymentID: payment.ID,
		ChannelID: channelID,
		Status:    status,
		ProviderRef: pickFirstNonEmpty(
			strings.TrimSpace(result.ProviderRef),
			strings.TrimSpace(result.SessionID),
			strings.TrimSpace(result.PaymentIntentID),
			strings.TrimSpace(payment.ProviderRef),
		),
		Amount:   amount,
		Currency: strings.ToUpper(strings.TrimSpace(result.Currency)),
		PaidAt:   result.PaidAt,
		Payload:  payload,
	})
}

func (s *PaymentService) findWechatWebhookPayment(channelID uint, result *wechatpay.WebhookResult) (*models.Payment, error) {
	if result == nil {
		return nil, ErrPaymentInvalid
	}
	if paymentID, ok := wechatpay.ParsePaymentIDFromAttach(result.Attach); ok {
		payment, err := s.paymentRepo.GetByID(paymentID)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment != nil && payment.ChannelID == channelID {
			return payment, nil
		}
	}
	if paymentNo := strings.TrimSpace(result.PaymentNo); paymentNo != "" {
		payment, err := s.paymentRepo.GetByPaymentNo(paymentNo)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment != nil && payment.ChannelID == channelID {
			return payment, nil
		}
	}

	if ref := strings.TrimSpace(result.TransactionID); ref != "" {
		payment, err := s.paymentRepo.GetLatestByProviderRef(ref)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if payment != nil && payment.ChannelID == channelID {
			return payment, nil
		}
	}
	return nil, ErrPaymentNotFound
}

func (s *PaymentService) handleWechatWebhookCallback(channelID uint, payment *models.Payment, result *wechatpay.WebhookResult) (*models.Payment, error) {
	if payment == nil || result == nil {
		return nil, ErrPaymentInvalid
	}
	amount := models.Money{}
	if strings.TrimSpace(result.Amount) != "" {
		parsed, err := decimal.NewFromString(strings.TrimSpace(result.Amount))
		if err == nil {
			amount = models.NewMoneyFromDecimal(parsed)
		}
	}
	payload := models.JSON{}
	if result.Raw != nil {
		payload = models.JSON(result.Raw)
	}
	return s.HandleCallback(PaymentCallbackInput{
		PaymentID:   payment.ID,
		ChannelID:   channelID,
		Status:      strings.TrimSpace(result.Status),
		ProviderRef: pickFirstNonEmpty(strings.TrimSpace(result.TransactionID), strings.TrimSpace(payment.ProviderRef)),
		Amount:      amount,
		Currency:    strings.ToUpper(strings.TrimSpace(result.Currency)),
		PaidAt:      result.PaidAt,
		Payload:     payload,
	})
}

func mapWechatGatewayError(err error) error {
	switch {
	case errors.Is(err, wechatpay.ErrConfigInvalid):
		return ErrPaymentChannelConfigInvalid
	case errors.Is(err, wechatpay.ErrRequestFailed):
		return ErrPaymentGatewayRequestFailed
	case errors.Is(err, wechatpay.ErrSignatureInvalid), errors.Is(err, wechatpay.ErrResponseInvalid):
		return ErrPaymentGatewayResponseInvalid
	default:
		return ErrPaymentGatewayRequestFailed
	}
}
