package model

import "time"

// 节假日日历类型
const (
	CalendarTypeVIC  = "VIC"
	CalendarTypeNSW  = "NSW"
	CalendarTypeBoth = "BOTH"
)

// IsValidCalendarType 日历类型是否为允许的三种之一
func IsValidCalendarType(t string) bool {
	switch t {
	case CalendarTypeVIC, CalendarTypeNSW, CalendarTypeBoth:
		return true
	}
	return false
}

// Holiday 节假日表 — 对应 holidays，(calendar_type, date) 唯一
type Holiday struct {
	HolidayID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"    json:"holiday_id"`
	CalendarType string    `gorm:"type:varchar(10);not null;uniqueIndex:uk_holiday" json:"calendar_type"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:uk_holiday"        json:"date"`
	Name         string    `gorm:"type:varchar(200);not null"                       json:"name"`
	BaseModel
}

// TableName 指定表名
func (Holiday) TableName() string { return "holidays" }
