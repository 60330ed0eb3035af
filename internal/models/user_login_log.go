package models

import "time"

// UserLoginLog 用户登录流水
// 说明：成功与失败都落一行，后台审计页和用户侧「登录记录」共用这张表；
// 登录失败时 UserID 可能为 0，仅凭 Email 归档。
type UserLoginLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      uint      `gorm:"index" json:"user_id"`
	Email       string    `gorm:"index;not null" json:"email"`                // 尝试登录的邮箱
	Status      string    `gorm:"index;not null" json:"status"`               // success/failed
	FailReason  string    `gorm:"index" json:"fail_reason"`                   // 失败原因枚举
	ClientIP    string    `gorm:"type:varchar(64);index" json:"client_ip"`    // 客户端IP
	UserAgent   string    `gorm:"type:text" json:"user_agent"`                // 客户端UA
	LoginSource string    `gorm:"type:varchar(32);index" json:"login_source"` // 来源（web）
	RequestID   string    `gorm:"type:varchar(64);index" json:"request_id"`   // 请求追踪ID
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}
