package model

import "time"

// Job 项目表 — 对应 jobs（由项目模块维护，本引擎只读）
type Job struct {
	JobID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"job_id"`
	JobNumber    string  `gorm:"type:varchar(50);not null"                      json:"job_number"`
	Name         string  `gorm:"type:varchar(200);not null"                     json:"name"`
	FactoryID    *string `gorm:"type:uuid"                                      json:"factory_id,omitempty"`
	LowestLevel  string  `gorm:"type:varchar(50)"                               json:"lowest_level"`
	HighestLevel string  `gorm:"type:varchar(50)"                               json:"highest_level"`
	Levels       string  `gorm:"type:text"                                      json:"levels"` // 逗号分隔的显式楼层列表（无上下限时使用）

	ProductionStartDate       *time.Time `gorm:"type:date" json:"production_start_date,omitempty"`
	ExpectedCycleTimePerFloor *int       `json:"expected_cycle_time_per_floor,omitempty"` // 每层默认周期（工作日）
	DaysInAdvance             *int       `json:"days_in_advance,omitempty"`               // 生产提前量覆盖值

	// 深化设计覆盖值（为空时取公司设置，再取系统默认）
	ProductionWindowDays *int `json:"production_window_days,omitempty"`
	IfcDaysInAdvance     *int `json:"ifc_days_in_advance,omitempty"`
	DaysToAchieveIfc     *int `json:"days_to_achieve_ifc,omitempty"`

	BaseModel

	// 关联
	Factory *Factory `gorm:"foreignKey:FactoryID;references:FactoryID" json:"factory,omitempty"`
}

// TableName 指定表名
func (Job) TableName() string { return "jobs" }
