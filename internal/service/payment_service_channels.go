package service

import (
	"fmt"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/payment/stripe"
	"github.com/pagespark/pagespark/internal/payment/wechatpay"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/shopspring/decimal"
)

// PaymentChannelInput 渠道创建/更新输入
type PaymentChannelInput struct {
	Name            string
	ProviderType    string
	InteractionMode string
	FeeRate         string
	ConfigJSON      models.JSON
	IsActive        *bool
	SortOrder       *int
}

// ListChannels 管理端支付渠道列表
func (s *PaymentService) ListChannels(filter repository.PaymentChannelListFilter) ([]models.PaymentChannel, int64, error) {
	return s.channelRepo.List(filter)
}

// ListActiveChannels 启用中的支付渠道（公开接口隐藏配置）
func (s *PaymentService) ListActiveChannels() ([]models.PaymentChannel, error) {
	channels, err := s.channelRepo.ListActive()
	if err != nil {
		return nil, err
	}
	for i := range channels {
		channels[i].ConfigJSON = nil
	}
	return channels, nil
}

// GetChannel 获取支付渠道
func (s *PaymentService) GetChannel(id uint) (*models.PaymentChannel, error) {
	if id == 0 {
		return nil, ErrPaymentInvalid
	}
	channel, err := s.channelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrPaymentChannelNotFound
	}
	return channel, nil
}

// CreateChannel 创建支付渠道
func (s *PaymentService) CreateChannel(input PaymentChannelInput) (*models.PaymentChannel, error) {
	channel, err := buildChannelFromInput(&models.PaymentChannel{IsActive: true}, input)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateChannel(channel); err != nil {
		return nil, err
	}
	if err := s.channelRepo.Create(channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// UpdateChannel 更新支付渠道
func (s *PaymentService) UpdateChannel(id uint, input PaymentChannelInput) (*models.PaymentChannel, error) {
	channel, err := s.GetChannel(id)
	if err != nil {
		return nil, err
	}
	channel, err = buildChannelFromInput(channel, input)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateChannel(channel); err != nil {
		return nil, err
	}
	if err := s.channelRepo.Update(channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// DeleteChannel 删除支付渠道（软删除，历史支付记录不受影响）
func (s *PaymentService) DeleteChannel(id uint) error {
	if _, err := s.GetChannel(id); err != nil {
		return err
	}
	return s.channelRepo.Delete(id)
}

// ValidateChannel 校验支付渠道配置
func (s *PaymentService) ValidateChannel(channel *models.PaymentChannel) error {
	if channel == nil {
		return ErrPaymentChannelConfigInvalid
	}
	feeRate := channel.FeeRate.Decimal.Round(2)
	if feeRate.LessThan(decimal.Zero) || feeRate.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPaymentChannelConfigInvalid
	}
	providerType := strings.ToLower(strings.TrimSpace(channel.ProviderType))
	interactionMode := strings.ToLower(strings.TrimSpace(channel.InteractionMode))
	switch providerType {
	case constants.PaymentProviderStripe:
		if interactionMode != constants.PaymentInteractionRedirect {
			return ErrPaymentChannelConfigInvalid
		}
		cfg, err := stripe.ParseConfig(channel.ConfigJSON)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		if err := stripe.ValidateConfig(cfg); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		return nil
	case constants.PaymentProviderWechatpay:
		cfg, err := wechatpay.ParseConfig(channel.ConfigJSON)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		if err := wechatpay.ValidateConfig(cfg, channel.InteractionMode); err != nil {
			return fmt.Errorf("%w: %v", ErrPaymentChannelConfigInvalid, err)
		}
		return nil
	default:
		return ErrPaymentProviderNotSupported
	}
}

func buildChannelFromInput(channel *models.PaymentChannel, input PaymentChannelInput) (*models.PaymentChannel, error) {
	if name := strings.TrimSpace(input.Name); name != "" {
		channel.Name = name
	}
	if providerType := strings.ToLower(strings.TrimSpace(input.ProviderType)); providerType != "" {
		channel.ProviderType = providerType
	}
	if mode := strings.ToLower(strings.TrimSpace(input.InteractionMode)); mode != "" {
		channel.InteractionMode = mode
	}
	if feeRate := strings.TrimSpace(input.FeeRate); feeRate != "" {
		parsed, err := models.NewMoneyFromString(feeRate)
		if err != nil {
			return nil, ErrPaymentChannelConfigInvalid
		}
		channel.FeeRate = parsed
	}
	if input.ConfigJSON != nil {
		channel.ConfigJSON = input.ConfigJSON
	}
	if input.IsActive != nil {
		channel.IsActive = *input.IsActive
	}
	if input.SortOrder != nil {
		channel.SortOrder = *input.SortOrder
	}
	if channel.Name == "" || channel.ProviderType == "" {
		return nil, ErrPaymentChannelConfigInvalid
	}
	if channel.InteractionMode == "" {
		if channel.ProviderType == constants.PaymentProviderWechatpay {
			channel.InteractionMode = constants.PaymentInteractionQR
		} else {
			channel.InteractionMode = constants.PaymentInteractionRedirect
		}
	}
	return channel, nil
}
