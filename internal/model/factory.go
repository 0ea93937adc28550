package model

// Factory 工厂表 — 对应 factories
type Factory struct {
	FactoryID       string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"factory_id"`
	Name            string   `gorm:"type:varchar(100);not null"                     json:"name"`
	WorkDays        IntArray `gorm:"type:int[]"                                     json:"work_days"`             // 7 位 0/1 掩码，下标 0 = 周日
	InheritWorkDays bool     `gorm:"not null;default:true"                          json:"inherit_work_days"`     // true 时沿用公司默认工作日
	CalendarType    string   `gorm:"type:varchar(10);not null;default:'VIC'"        json:"calendar_type"`         // VIC | NSW | BOTH
	IsActive        bool     `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Factory) TableName() string { return "factories" }
