package models

import "time"

// AdminLoginAttempt 管理员登录尝试记录
// 说明：独立的追加表，避免在管理员行上维护无界列表；成功与失败都记录。
type AdminLoginAttempt struct {
	ID         uint      `gorm:"primarykey" json:"id"`                      // 主键
	AdminID    uint      `gorm:"index" json:"admin_id"`                     // 管理员ID（邮箱不存在时为0）
	Email      string    `gorm:"index;not null" json:"email"`               // 尝试登录邮箱
	Success    bool      `gorm:"index;not null" json:"success"`             // 是否成功
	FailReason string    `gorm:"type:varchar(50);index" json:"fail_reason"` // 失败原因枚举
	ClientIP   string    `gorm:"type:varchar(64);index" json:"client_ip"`   // 客户端IP
	UserAgent  string    `gorm:"type:text" json:"user_agent"`               // 客户端UA
	RequestID  string    `gorm:"type:varchar(64);index" json:"request_id"`  // 请求追踪ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                   // 记录时间
}

// TableName 指定表名
func (AdminLoginAttempt) TableName() string {
	return "admin_login_attempts"
}
