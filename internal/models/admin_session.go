package models

import "time"

// AdminSession 管理员会话表
// 说明：每次登录创建一条会话记录，持有不透明 token；校验、登出、过期清理
// 都以该表为准，Redis 仅作为快照缓存。
type AdminSession struct {
	ID        uint       `gorm:"primarykey" json:"id"`                           // 主键
	AdminID   uint       `gorm:"index;not null" json:"admin_id"`                 // 管理员ID
	Token     string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"-"` // 会话令牌（64位十六进制，不返回列表接口）
	ClientIP  string     `gorm:"type:varchar(64)" json:"client_ip"`              // 登录客户端IP
	UserAgent string     `gorm:"type:text" json:"user_agent"`                    // 登录客户端UA
	ExpiresAt time.Time  `gorm:"index;not null" json:"expires_at"`               // 过期时间
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`                        // 主动撤销时间（登出）
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                        // 创建时间

	// 关联
	Admin AdminUser `gorm:"foreignKey:AdminID" json:"admin,omitempty"` // 管理员信息
}

// TableName 指定表名
func (AdminSession) TableName() string {
	return "admin_sessions"
}

// IsExpired 会话是否已过期
func (s *AdminSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// IsRevoked 会话是否已被撤销
func (s *AdminSession) IsRevoked() bool {
	return s.RevokedAt != nil
}
