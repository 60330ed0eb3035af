package models

import "time"

// NewsletterSubscriber 邮件订阅表
// 说明：双重确认流程，pending 状态持有确认令牌，确认后清空。
type NewsletterSubscriber struct {
	ID             uint       `gorm:"primarykey" json:"id"`                                            // 主键
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`                               // 订阅邮箱
	Status         string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"` // 状态（pending/confirmed/unsubscribed）
	ConfirmToken   string     `gorm:"index;type:varchar(64)" json:"-"`                                 // 确认令牌（确认后清空）
	ConfirmSentAt  *time.Time `json:"confirm_sent_at"`                                                 // 确认邮件发送时间
	ConfirmedAt    *time.Time `gorm:"index" json:"confirmed_at"`                                       // 确认时间
	UnsubscribedAt *time.Time `gorm:"index" json:"unsubscribed_at"`                                    // 退订时间
	Locale         string     `gorm:"type:varchar(20);default:'en-US'" json:"locale"`                  // 订阅时语言
	ClientIP       string     `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                     // 订阅来源IP
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time  `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
