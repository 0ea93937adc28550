package model

import "time"

// SlotAdjustment 排期调整记录表 — 对应 slot_adjustments（只追加的审计日志，不更新不删除）
type SlotAdjustment struct {
	AdjustmentID       string    `gorm:"type:uuid;primaryKey"               json:"adjustment_id"`
	SlotID             string    `gorm:"type:uuid;not null;index"           json:"slot_id"`
	JobID              string    `gorm:"type:uuid;not null;index"           json:"job_id"`
	PreviousDate       time.Time `gorm:"type:date;not null"                 json:"previous_date"`
	NewDate            time.Time `gorm:"type:date;not null"                 json:"new_date"`
	Reason             string    `gorm:"type:varchar(500);not null"         json:"reason"`
	ChangedBy          string    `gorm:"type:varchar(100);not null"         json:"changed_by"`
	ClientConfirmed    bool      `gorm:"not null;default:false"             json:"client_confirmed"`
	Cascaded           bool      `gorm:"not null;default:false"             json:"cascaded"`
	OriginAdjustmentID *string   `gorm:"type:uuid"                          json:"origin_adjustment_id,omitempty"` // 级联调整指向源调整
	CreatedAt          time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (SlotAdjustment) TableName() string { return "slot_adjustments" }
