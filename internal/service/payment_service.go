package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/payment/stripe"
	"github.com/pagespark/pagespark/internal/payment/wechatpay"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPaymentExpireMinutes = 30

// PaymentService 支付服务
// 支付单创建、网关下单、回调落账都汇聚在这里。
type PaymentService struct {
	paymentRepo     repository.PaymentRepository
	channelRepo     repository.PaymentChannelRepository
	templateRepo    repository.TemplateRepository
	planRepo        repository.PlanRepository
	purchaseRepo    repository.TemplatePurchaseRepository
	subscriptionSvc *SubscriptionService
	analyticsSvc    *AnalyticsService
	queueClient     *queue.Client
	expireMinutes   int
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	channelRepo repository.PaymentChannelRepository,
	templateRepo repository.TemplateRepository,
	planRepo repository.PlanRepository,
	purchaseRepo repository.TemplatePurchaseRepository,
	subscriptionSvc *SubscriptionService,
	analyticsSvc *AnalyticsService,
	queueClient *queue.Client,
	cfg *config.PaymentConfig,
) *PaymentService {
	expireMinutes := defaultPaymentExpireMinutes
	if cfg != nil && cfg.ExpireMinutes > 0 {
		expireMinutes = cfg.ExpireMinutes
	}
	return &PaymentService{
		paymentRepo:     paymentRepo,
		channelRepo:     channelRepo,
		templateRepo:    templateRepo,
		planRepo:        planRepo,
		purchaseRepo:    purchaseRepo,
		subscriptionSvc: subscriptionSvc,
		analyticsSvc:    analyticsSvc,
		queueClient:     queueClient,
		expireMinutes:   expireMinutes,
	}
}

// CreatePaymentInput 创建支付请求
type CreatePaymentInput struct {
	UserID     uint
	Purpose    string
	TemplateID uint
	PlanID     uint
	ChannelID  uint
	ClientIP   string
	Context    context.Context
}

// CreatePaymentResult 创建支付结果
type CreatePaymentResult struct {
	Payment *models.Payment
	Channel *models.PaymentChannel
	Reused  bool
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

func hasProviderResult(payment *models.Payment) bool {
	if payment == nil {
		return false
	}
	return strings.TrimSpace(payment.PayURL) != "" || strings.TrimSpace(payment.QRCode) != ""
}

// CreatePayment 创建支付单并向网关下单
func (s *PaymentService) CreatePayment(input CreatePaymentInput) (*CreatePaymentResult, error) {
	if input.UserID == 0 || input.ChannelID == 0 {
		return nil, ErrPaymentInvalid
	}
	purpose := strings.ToLower(strings.TrimSpace(input.Purpose))

	log := paymentLogger(
		"user_id", input.UserID,
		"purpose", purpose,
		"channel_id", input.ChannelID,
	)

	var refID uint
	var currency string
	var baseAmount decimal.Decimal
	var subject string

	switch purpose {
	case constants.PaymentPurposeTemplate:
		if input.TemplateID == 0 {
			return nil, ErrPaymentInvalid
		}
		template, err := s.templateRepo.GetByID(input.TemplateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, ErrTemplateNotFound
		}
		if template.Status != constants.TemplateStatusLive {
			return nil, ErrTemplateNotLive
		}
		if template.IsFree() {
			return nil, ErrPaymentInvalid
		}
		owned, err := s.purchaseRepo.GetByUserAndTemplate(input.UserID, template.ID)
		if err != nil {
			return nil, ErrPaymentCreateFailed
		}
		if owned != nil {
			return nil, ErrTemplateAlreadyOwned
		}
		refID = template.ID
		currency = template.Currency
		baseAmount = template.PriceAmount.Decimal
		subject = pickLocalizedText(template.TitleJSON, template.Slug)
	case constants.PaymentPurposeSubscription:
		if input.PlanID == 0 {
			return nil, ErrPaymentInvalid
		}
		plan, err := s.planRepo.GetByID(input.PlanID)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, ErrPlanNotFound
		}
		if !plan.IsActive {
			return nil, ErrPlanInactive
		}
		refID = plan.ID
		currency = plan.Currency
		baseAmount = plan.PriceAmount.Decimal
		subject = pickLocalizedText(plan.NameJSON, plan.Code)
	default:
		return nil, ErrPaymentInvalid
	}

	channel, err := s.channelRepo.GetByID(input.ChannelID)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrPaymentChannelNotFound
	}
	if !channel.IsActive {
		return nil, ErrPaymentChannelInactive
	}
	feeRate := channel.FeeRate.Decimal.Round(2)
	if feeRate.LessThan(decimal.Zero) || feeRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrPaymentChannelConfigInvalid
	}
	currency = resolvePaymentCurrency(currency, channel)

	now := time.Now()
	existing, err := s.paymentRepo.GetLatestPendingByUserPurpose(input.UserID, purpose, refID, now)
	if err != nil {
		return nil, ErrPaymentCreateFailed
	}
	if existing != nil && existing.ChannelID == channel.ID && hasProviderResult(existing) {
		log.Infow("payment_create_reuse_pending", "payment_id", existing.ID)
		return &CreatePaymentResult{Payment: existing, Channel: channel, Reused: true}, nil
	}

	feeAmount := decimal.Zero
	if feeRate.GreaterThan(decimal.Zero) {
		feeAmount = baseAmount.Mul(feeRate).Div(decimal.NewFromInt(100)).Round(2)
	}
	payableAmount := baseAmount.Add(feeAmount).Round(2)
	expiredAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)

	payment := &models.Payment{
		PaymentNo:       generatePaymentNo(),
		Purpose:         purpose,
		UserID:          input.UserID,
		ChannelID:       channel.ID,
		ProviderType:    channel.ProviderType,
		InteractionMode: channel.InteractionMode,
		Amount:          models.NewMoneyFromDecimal(payableAmount),
		FeeRate:         models.NewMoneyFromDecimal(feeRate),
		FeeAmount:       models.NewMoneyFromDecimal(feeAmount),
		Currency:        currency,
		Status:          constants.PaymentStatusInitiated,
		CreatedAt:       now,
		UpdatedAt:       now,
		ExpiredAt:       &expiredAt,
	}
	if purpose == constants.PaymentPurposeTemplate {
		payment.TemplateID = &refID
	} else {
		payment.PlanID = &refID
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		return nil, ErrPaymentCreateFailed
	}

	if err := s.applyProviderPayment(input, channel, payment, subject); err != nil {
		payment.Status = constants.PaymentStatusFailed
		payment.UpdatedAt = time.Now()
		if updateErr := s.paymentRepo.Update(payment); updateErr != nil {
			log.Errorw("payment_create_provider_failed_with_rollback_error",
				"payment_id", payment.ID,
				"provider_error", err,
				"rollback_error", updateErr,
			)
		} else {
			log.Errorw("payment_create_provider_failed",
				"payment_id", payment.ID,
				"provider_type", payment.ProviderType,
				"error", err,
			)
		}
		return nil, err
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueuePaymentExpire(queue.PaymentExpirePayload{
			PaymentID: payment.ID,
		}, time.Until(expiredAt)); err != nil {
			log.Warnw("payment_enqueue_expire_failed", "payment_id", payment.ID, "error", err)
		}
	}

	log.Infow("payment_create_success",
		"payment_id", payment.ID,
		"payment_no", payment.PaymentNo,
		"provider_type", payment.ProviderType,
		"interaction_mode", payment.InteractionMode,
		"currency", payment.Currency,
		"amount", payment.Amount.String(),
	)
	return &CreatePaymentResult{Payment: payment, Channel: channel}, nil
}

// AcquireFreeTemplate 免费模板直接授予下载权
func (s *PaymentService) AcquireFreeTemplate(userID, templateID uint) (*models.TemplatePurchase, error) {
	if userID == 0 || templateID == 0 {
		return nil, ErrPaymentInvalid
	}
	template, err := s.templateRepo.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrTemplateNotFound
	}
	if template.Status != constants.TemplateStatusLive {
		return nil, ErrTemplateNotLive
	}
	if !template.IsFree() {
		return nil, ErrPaymentInvalid
	}

	existing, err := s.purchaseRepo.GetByUserAndTemplate(userID, templateID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	purchase := &models.TemplatePurchase{
		UserID:     userID,
		TemplateID: templateID,
		Amount:     models.NewMoneyFromDecimal(decimal.Zero),
		Currency:   template.Currency,
	}
	if err := s.purchaseRepo.Create(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// ListPayments 管理端支付列表
func (s *PaymentService) ListPayments(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.ListAdmin(filter)
}

// ListPaymentsByUser 用户自己的支付记录
func (s *PaymentService) ListPaymentsByUser(userID uint, page, pageSize int) ([]models.Payment, int64, error) {
	if userID == 0 {
		return nil, 0, ErrPaymentInvalid
	}
	return s.paymentRepo.ListByUser(userID, page, pageSize)
}

// GetPayment 获取支付记录
func (s *PaymentService) GetPayment(id uint) (*models.Payment, error) {
	if id == 0 {
		return nil, ErrPaymentInvalid
	}
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, ErrPaymentUpdateFailed
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// GetPaymentForUser 用户侧查询支付单（归属校验）
func (s *PaymentService) GetPaymentForUser(userID, id uint) (*models.Payment, error) {
	payment, err := s.GetPayment(id)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) applyProviderPayment(input CreatePaymentInput, channel *models.PaymentChannel, payment *models.Payment, subject string) (err error) {
	providerType := strings.ToLower(strings.TrimSpace(channel.ProviderType))
	log := paymentLogger(
		"payment_id", payment.ID,
		"payment_no", payment.PaymentNo,
		"channel_id", channel.ID,
		"provider_type", providerType,
		"interaction_mode", channel.InteractionMode,
	)
	defer func() {
		if err != nil {
			log.Errorw("payment_provider_apply_failed", "error", err)
			return
		}
		log.Infow("payment_provider_apply_success")
	}()

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}

	switch providerType {
	case constants.PaymentProviderStripe:
		cfg, err := stripe.ParseConfig(channel.ConfigJSON)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		if err := stripe.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		createResult, err := stripe.CreatePayment(ctx, cfg, stripe.CreateInput{
			PaymentNo:   payment.PaymentNo,
			PaymentID:   payment.ID,
			Amount:      payment.Amount.String(),
			Currency:    payment.Currency,
			Description: subject,
			SuccessURL:  appendURLQuery(cfg.SuccessURL, buildPaymentReturnQuery(payment, "stripe_return", "{CHECKOUT_SESSION_ID}")),
			CancelURL:   appendURLQuery(cfg.CancelURL, buildPaymentReturnQuery(payment, "stripe_cancel", "")),
		})
		if err != nil {
			return mapStripeGatewayError(err)
		}
		payment.PayURL = strings.TrimSpace(createResult.URL)
		payment.QRCode = ""
		payment.Status = constants.PaymentStatusPending
		payment.ProviderRef = pickFirstNonEmpty(strings.TrimSpace(createResult.SessionID), strings.TrimSpace(createResult.PaymentIntentID), payment.PaymentNo)
		if createResult.Raw != nil {
			payment.ProviderPayload = models.JSON(createResult.Raw)
		}
		payment.UpdatedAt = time.Now()
		if err := s.paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		return nil
	case constants.PaymentProviderWechatpay:
		payment.Currency = constants.CurrencyCNY
		cfg, err := wechatpay.ParseConfig(channel.ConfigJSON)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		if err := wechatpay.ValidateConfig(cfg, channel.InteractionMode); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		createResult, err := wechatpay.CreatePayment(ctx, cfg, wechatpay.CreateInput{
			PaymentNo:   payment.PaymentNo,
			PaymentID:   payment.ID,
			Amount:      payment.Amount.String(),
			Currency:    payment.Currency,
			Description: subject,
			ClientIP:    strings.TrimSpace(input.ClientIP),
			NotifyURL:   cfg.NotifyURL,
		}, channel.InteractionMode)
		if err != nil {
			switch {
			case errors.Is(err, wechatpay.ErrConfigInvalid):
				return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
			case errors.Is(err, wechatpay.ErrRequestFailed):
				return ErrPaymentGatewayRequestFailed
			case errors.Is(err, wechatpay.ErrResponseInvalid):
				return ErrPaymentGatewayResponseInvalid
			default:
				return ErrPaymentGatewayRequestFailed
			}
		}
		payment.PayURL = strings.TrimSpace(createResult.PayURL)
		payment.QRCode = strings.TrimSpace(createResult.QRCode)
		payment.Status = constants.PaymentStatusPending
		payment.ProviderRef = pickFirstNonEmpty(strings.TrimSpace(payment.ProviderRef), payment.PaymentNo)
		if createResult.Raw != nil {
			payment.ProviderPayload = models.JSON(createResult.Raw)
		}
		payment.UpdatedAt = time.Now()
		if err := s.paymentRepo.Update(payment); err != nil {
			return ErrPaymentUpdateFailed
		}
		return nil
	default:
		return ErrPaymentProviderNotSupported
	}
}

func mapStripeGatewayError(err error) error {
	switch {
	case errors.Is(err, stripe.ErrConfigInvalid):
		return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
	case errors.Is(err, stripe.ErrRequestFailed):
		return ErrPaymentGatewayRequestFailed
	case errors.Is(err, stripe.ErrResponseInvalid):
		return ErrPaymentGatewayResponseInvalid
	case errors.Is(err, stripe.ErrSignatureInvalid):
		return ErrWebhookSignatureInvalid
	default:
		return ErrPaymentGatewayRequestFailed
	}
}

func generatePaymentNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("PS%s%s", now, randNumericCode(6))
}

func randNumericCode(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(strconv.FormatInt(n.Int64(), 10))
	}
	return b.String()
}

func appendURLQuery(rawURL string, params map[string]string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	for key, value := range params {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		query.Set(key, value)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func buildPaymentReturnQuery(payment *models.Payment, marker string, sessionID string) map[string]string {
	params := map[string]string{}
	if payment != nil {
		if paymentNo := strings.TrimSpace(payment.PaymentNo); paymentNo != "" {
			params["payment_no"] = paymentNo
		}
	}
	if marker = strings.TrimSpace(marker); marker != "" {
		params[marker] = "1"
	}
	if sessionID = strings.TrimSpace(sessionID); sessionID != "" {
		params["session_id"] = sessionID
	}
	return params
}

func pickFirstNonEmpty(values ...string) string {
	for _, val := range values {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func pickLocalizedText(text models.JSON, fallback string) string {
	if text != nil {
		for _, key := range constants.SupportedLocales {
			if val, ok := text[key]; ok {
				if str, ok := val.(string); ok && strings.TrimSpace(str) != "" {
					return strings.TrimSpace(str)
				}
			}
		}
		for _, val := range text {
			if str, ok := val.(string); ok && strings.TrimSpace(str) != "" {
				return strings.TrimSpace(str)
			}
		}
	}
	return fallback
}

func resolvePaymentCurrency(currency string, channel *models.PaymentChannel) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		normalized = constants.SiteCurrencyDefault
	}
	if channel != nil && strings.ToLower(strings.TrimSpace(channel.ProviderType)) == constants.PaymentProviderWechatpay {
		return constants.CurrencyCNY
	}
	return normalized
}

func normalizePaymentStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isPaymentStatusValid(status string) bool {
	switch status {
	case constants.PaymentStatusInitiated, constants.PaymentStatusPending, constants.PaymentStatusSuccess, constants.PaymentStatusFailed, constants.PaymentStatusExpired:
		return true
	default:
		return false
	}
}
