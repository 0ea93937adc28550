package model

// CompanySettings 公司排期设置表 — 对应 company_settings（单行强类型）
type CompanySettings struct {
	Singleton             bool     `gorm:"primaryKey;default:true"                      json:"-"`
	ProductionWorkDays    IntArray `gorm:"type:int[]"                                   json:"production_work_days"`
	DraftingWorkDays      IntArray `gorm:"type:int[]"                                   json:"drafting_work_days"`
	DraftingCalendarType  string   `gorm:"type:varchar(10);not null;default:'VIC'"      json:"drafting_calendar_type"`
	ProductionWindowDays  *int     `json:"production_window_days,omitempty"`
	IfcDaysInAdvance      *int     `json:"ifc_days_in_advance,omitempty"`
	DaysToAchieveIfc      *int     `json:"days_to_achieve_ifc,omitempty"`
	BaseModel
}

// TableName 指定表名
func (CompanySettings) TableName() string { return "company_settings" }
