package models

import "time"

// TemplatePurchase 模板购买记录
// 说明：支付成功后写入，作为付费模板的下载授权凭据；同一用户同一模板只保留一条。
type TemplatePurchase struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                // 主键
	UserID     uint      `gorm:"index:idx_purchase_user_template,unique;not null" json:"user_id"`     // 用户ID
	TemplateID uint      `gorm:"index:idx_purchase_user_template,unique;not null" json:"template_id"` // 模板ID
	PaymentID  *uint     `gorm:"index" json:"payment_id,omitempty"`                                   // 支付记录ID（免费模板为空）
	Amount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                 // 实付金额
	Currency   string    `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`             // 币种
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                             // 购买时间

	// 关联
	Template Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"` // 模板信息
}

// TableName 指定表名
func (TemplatePurchase) TableName() string {
	return "template_purchases"
}
