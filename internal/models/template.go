package models

import (
	"time"

	"gorm.io/gorm"
)

// Template 网站模板表
type Template struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OwnerUserID     *uint          `gorm:"index" json:"owner_user_id,omitempty"`                          // 归属用户ID（空为官方模板）
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`                             // 分类ID
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                              // 唯一标识
	TitleJSON       JSON           `gorm:"type:json;not null" json:"title"`                               // 多语言标题
	DescriptionJSON JSON           `gorm:"type:json" json:"description"`                                  // 多语言描述
	PreviewImage    string         `gorm:"type:varchar(500)" json:"preview_image"`                        // 预览图地址
	DemoURL         string         `gorm:"type:varchar(500)" json:"demo_url"`                             // 在线演示地址
	Framework       string         `gorm:"type:varchar(50);index" json:"framework"`                       // 前端框架（next/astro/plain）
	Tags            StringArray    `gorm:"type:json" json:"tags"`                                         // 标签数组
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"`     // 价格金额（0 为免费）
	Currency        string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`       // 币种
	Status          string         `gorm:"type:varchar(20);index;not null;default:'draft'" json:"status"` // 状态（draft/deploying/live/disabled）
	IsFeatured      bool           `gorm:"default:false;index" json:"is_featured"`                        // 是否精选
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                             // 排序权重
	DeployedAt      *time.Time     `gorm:"index" json:"deployed_at"`                                      // 上线时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                    // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Template) TableName() string {
	return "templates"
}

// IsFree 是否免费模板
func (t *Template) IsFree() bool {
	return t.PriceAmount.IsZero()
}
