package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription 用户订阅表
// 说明：状态与周期边界由支付回调（webhook）驱动更新。
type Subscription struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                           // 主键
	UserID             uint           `gorm:"index;not null" json:"user_id"`                                  // 用户ID
	PlanID             uint           `gorm:"index;not null" json:"plan_id"`                                  // 计划ID
	Status             string         `gorm:"type:varchar(20);index;not null;default:'active'" json:"status"` // 状态（active/past_due/canceled）
	ProviderType       string         `gorm:"type:varchar(20);index;not null" json:"provider_type"`           // 支付提供方（stripe/wechatpay）
	ProviderCustomer   string         `gorm:"index;type:varchar(128)" json:"provider_customer"`               // 第三方客户标识
	ProviderRef        string         `gorm:"index;type:varchar(128)" json:"provider_ref"`                    // 第三方订阅标识
	CurrentPeriodStart *time.Time     `json:"current_period_start"`                                           // 当前周期起点
	CurrentPeriodEnd   *time.Time     `gorm:"index" json:"current_period_end"`                                // 当前周期终点
	CanceledAt         *time.Time     `gorm:"index" json:"canceled_at"`                                       // 取消时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	// 关联
	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"` // 计划信息
}

// TableName 指定表名
func (Subscription) TableName() string {
	return "subscriptions"
}
