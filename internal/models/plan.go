package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan 订阅计划表
type Plan struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Code            string         `gorm:"uniqueIndex;type:varchar(50);not null" json:"code"`         // 唯一标识（starter/pro/business）
	NameJSON        JSON           `gorm:"type:json;not null" json:"name"`                            // 多语言名称
	DescriptionJSON JSON           `gorm:"type:json" json:"description"`                              // 多语言描述
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 周期价格
	Currency        string         `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`   // 币种
	Interval        string         `gorm:"type:varchar(10);not null;default:'month'" json:"interval"` // 计费周期（month/year）
	Features        StringArray    `gorm:"type:json" json:"features"`                                 // 特性列表
	ProjectLimit    int            `gorm:"not null;default:1" json:"project_limit"`                   // 项目数量上限（0 不限制）
	IsActive        bool           `gorm:"not null;index" json:"is_active"`                           // 是否启用
	SortOrder       int            `gorm:"not null;default:0;index" json:"sort_order"`                // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Plan) TableName() string {
	return "plans"
}
