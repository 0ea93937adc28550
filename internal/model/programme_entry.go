package model

import "time"

// ProgrammeEntry 楼层周期表 — 对应 programme_entries
// 同一 job 内 sequence_order 为 0..n-1 连续序列；(level, building_number, pour_label) 唯一
type ProgrammeEntry struct {
	EntryID        string     `gorm:"type:uuid;primaryKey"              json:"entry_id"`
	JobID          string     `gorm:"type:uuid;not null;index"          json:"job_id"`
	BuildingNumber int        `gorm:"not null;default:1"                json:"building_number"`
	Level          string     `gorm:"type:varchar(50);not null"         json:"level"`
	LevelOrder     float64    `gorm:"not null;default:0"                json:"level_order"`
	SequenceOrder  int        `gorm:"not null"                          json:"sequence_order"`
	PourLabel      *string    `gorm:"type:varchar(20)"                  json:"pour_label,omitempty"` // 分段浇筑标签
	CycleDays      int        `gorm:"not null"                          json:"cycle_days"`
	EstimatedStart *time.Time `gorm:"type:date"                         json:"estimated_start,omitempty"`
	EstimatedEnd   *time.Time `gorm:"type:date"                         json:"estimated_end,omitempty"`
	ManualStart    *time.Time `gorm:"type:date"                         json:"manual_start,omitempty"`
	ManualEnd      *time.Time `gorm:"type:date"                         json:"manual_end,omitempty"`
	Notes          string     `gorm:"type:text"                         json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ProgrammeEntry) TableName() string { return "programme_entries" }

// PourLabelValue 返回分段标签（未设置时为空串）
func (e *ProgrammeEntry) PourLabelValue() string {
	if e.PourLabel == nil {
		return ""
	}
	return *e.PourLabel
}
