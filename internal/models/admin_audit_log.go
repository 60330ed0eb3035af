package models

import "time"

// AdminAuditLog 管理员操作审计日志
// 说明：追加写入，不提供更新与删除；支持按管理员、动作、资源与时间范围检索。
type AdminAuditLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                            // 主键
	AdminID      uint      `gorm:"index" json:"admin_id"`                                           // 操作管理员ID（登录失败时可为0）
	AdminEmail   string    `gorm:"type:varchar(255);index;not null;default:''" json:"admin_email"`  // 操作管理员邮箱
	Action       string    `gorm:"type:varchar(50);index;not null" json:"action"`                   // 动作（login/logout/create/update/delete/change_password）
	ResourceType string    `gorm:"type:varchar(50);index;not null;default:''" json:"resource_type"` // 资源类型
	ResourceID   string    `gorm:"type:varchar(64);index;not null;default:''" json:"resource_id"`   // 资源ID
	Outcome      string    `gorm:"type:varchar(20);index;not null" json:"outcome"`                  // 结果（success/failure）
	DetailJSON   JSON      `gorm:"type:json" json:"detail"`                                         // 附加详情
	ClientIP     string    `gorm:"type:varchar(64);index" json:"client_ip"`                         // 客户端IP
	UserAgent    string    `gorm:"type:text" json:"user_agent"`                                     // 客户端UA
	RequestID    string    `gorm:"type:varchar(64);index" json:"request_id"`                        // 请求追踪ID
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                         // 记录时间
}

// TableName 指定表名
func (AdminAuditLog) TableName() string {
	return "admin_audit_logs"
}
