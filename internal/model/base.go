package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ── 星期枚举 ──
//
// 时间表只排周一至周六，周日为封闭日不参与排课。

const (
	DayMonday    = "Monday"
	DayTuesday   = "Tuesday"
	DayWednesday = "Wednesday"
	DayThursday  = "Thursday"
	DayFriday    = "Friday"
	DaySaturday  = "Saturday"
)

// Weekdays 排课日的固定顺序（周一到周六）
var Weekdays = []string{
	DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday,
}
