package models

import "time"

// TemplateAnalytics 模板每日统计表
// 说明：按 (模板, 日期) 唯一，浏览/下载/成交路径走 upsert 累加。
type TemplateAnalytics struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                                         // 主键
	TemplateID uint      `gorm:"index:idx_analytics_template_day,unique;not null" json:"template_id"`          // 模板ID
	Day        string    `gorm:"index:idx_analytics_template_day,unique;type:varchar(10);not null" json:"day"` // 统计日期（YYYY-MM-DD，UTC）
	Views      int64     `gorm:"not null;default:0" json:"views"`                                              // 浏览次数
	Downloads  int64     `gorm:"not null;default:0" json:"downloads"`                                          // 下载次数
	Purchases  int64     `gorm:"not null;default:0" json:"purchases"`                                          // 成交笔数
	Revenue    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"revenue"`                         // 成交金额
	CreatedAt  time.Time `json:"created_at"`                                                                   // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                                   // 更新时间
}

// TableName 指定表名
func (TemplateAnalytics) TableName() string {
	return "template_analytics"
}

// AnalyticsDay 统计日期格式化（UTC 口径）
func AnalyticsDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
