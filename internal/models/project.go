package models

import (
	"time"

	"gorm.io/gorm"
)

// Project 用户生成的站点项目表
type Project struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                               // 主键
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                      // 用户ID
	TemplateID     *uint          `gorm:"index" json:"template_id,omitempty"`                                 // 来源模板ID（从空白生成时为空）
	Name           string         `gorm:"type:varchar(200);not null" json:"name"`                             // 项目名称
	Subdomain      string         `gorm:"uniqueIndex;type:varchar(100);not null" json:"subdomain"`            // 子域名前缀
	Prompt         string         `gorm:"type:text" json:"prompt"`                                            // 生成提示词
	Status         string         `gorm:"type:varchar(20);index;not null;default:'generating'" json:"status"` // 状态（generating/ready/published/failed)
	SiteConfigJSON JSON           `gorm:"type:json" json:"site_config"`                                       // 站点配置
	FailReason     string         `gorm:"type:varchar(255)" json:"fail_reason,omitempty"`                     // 生成失败原因
	GeneratedAt    *time.Time     `gorm:"index" json:"generated_at"`                                          // 生成完成时间
	PublishedAt    *time.Time     `gorm:"index" json:"published_at"`                                          // 发布时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                            // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                     // 软删除时间

	// 关联
	Template *Template `gorm:"foreignKey:TemplateID" json:"template,omitempty"` // 来源模板
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}
