package public

import (
	"errors"

	"github.com/pagespark/pagespark/internal/http/response"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var projectCreateErrorRules = []mappedHandlerError{
	{target: service.ErrProjectNameRequired, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrSubdomainInvalid, code: response.CodeBadRequest, key: "error.subdomain_invalid"},
	{target: service.ErrSubdomainExists, code: response.CodeBadRequest, key: "error.subdomain_exists"},
	{target: service.ErrProjectLimitReached, code: response.CodeBadRequest, key: "error.project_limit_reached"},
	{target: service.ErrTemplateNotFound, code: response.CodeNotFound, key: "error.template_not_found"},
	{target: service.ErrTemplateNotLive, code: response.CodeBadRequest, key: "error.template_not_live"},
	{target: service.ErrTemplateNotPurchased, code: response.CodeBadRequest, key: "error.purchase_required"},
	{target: service.ErrQueueUnavailable, code: response.CodeInternal, key: "error.queue_unavailable"},
}

var paymentCreateErrorRules = []mappedHandlerError{
	{target: service.ErrPaymentInvalid, code: response.CodeBadRequest, key: "error.payment_invalid"},
	{target: service.ErrPaymentChannelNotFound, code: response.CodeNotFound, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentChannelInactive, code: response.CodeBadRequest, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentProviderNotSupported, code: response.CodeBadRequest, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentChannelConfigInvalid, code: response.CodeBadRequest, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentGatewayRequestFailed, code: response.CodeBadRequest, key: "error.payment_gateway_failed"},
	{target: service.ErrPaymentGatewayResponseInvalid, code: response.CodeBadRequest, key: "error.payment_gateway_failed"},
	{target: service.ErrPaymentCurrencyMismatch, code: response.CodeBadRequest, key: "error.payment_currency_mismatch"},
	{target: service.ErrTemplateNotFound, code: response.CodeNotFound, key: "error.template_not_found"},
	{target: service.ErrTemplateNotLive, code: response.CodeBadRequest, key: "error.template_not_live"},
	{target: service.ErrTemplateAlreadyOwned, code: response.CodeBadRequest, key: "error.template_already_owned"},
	{target: service.ErrPlanNotFound, code: response.CodeNotFound, key: "error.plan_not_found"},
	{target: service.ErrPlanInactive, code: response.CodeBadRequest, key: "error.plan_inactive"},
}

var paymentWebhookErrorRules = []mappedHandlerError{
	{target: service.ErrWebhookSignatureInvalid, code: response.CodeBadRequest, key: "error.webhook_invalid"},
	{target: service.ErrPaymentNotFound, code: response.CodeNotFound, key: "error.payment_not_found"},
	{target: service.ErrPaymentStatusInvalid, code: response.CodeBadRequest, key: "error.payment_status_invalid"},
	{target: service.ErrPaymentAmountMismatch, code: response.CodeBadRequest, key: "error.payment_amount_mismatch"},
	{target: service.ErrPaymentCurrencyMismatch, code: response.CodeBadRequest, key: "error.payment_currency_mismatch"},
	{target: service.ErrPaymentChannelNotFound, code: response.CodeNotFound, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentChannelConfigInvalid, code: response.CodeBadRequest, key: "error.payment_channel_invalid"},
	{target: service.ErrPaymentGatewayResponseInvalid, code: response.CodeBadRequest, key: "error.payment_gateway_failed"},
}

func respondPaymentCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "error.payment_create_failed")
}

func respondPaymentWebhookError(c *gin.Context, err error) {
	respondWithMappedError(c, err, paymentWebhookErrorRules, response.CodeInternal, "error.webhook_invalid")
}
