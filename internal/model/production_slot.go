package model

import "time"

// SlotStatus 生产排期状态
type SlotStatus string

const (
	SlotStatusScheduled     SlotStatus = "SCHEDULED"
	SlotStatusPendingUpdate SlotStatus = "PENDING_UPDATE"
	SlotStatusBooked        SlotStatus = "BOOKED"
	SlotStatusCompleted     SlotStatus = "COMPLETED"
)

// slotTransitions 状态流转表
// PENDING_UPDATE 仅能由预订/完成等显式操作清除，不会自动恢复
var slotTransitions = map[SlotStatus][]SlotStatus{
	SlotStatusScheduled:     {SlotStatusPendingUpdate, SlotStatusBooked, SlotStatusCompleted},
	SlotStatusPendingUpdate: {SlotStatusPendingUpdate, SlotStatusBooked, SlotStatusCompleted},
	SlotStatusBooked:        {SlotStatusPendingUpdate, SlotStatusCompleted},
	SlotStatusCompleted:     {},
}

// IsValid 是否为已定义状态
func (s SlotStatus) IsValid() bool {
	_, ok := slotTransitions[s]
	return ok
}

// CanTransitionTo 是否允许从当前状态流转到 next
func (s SlotStatus) CanTransitionTo(next SlotStatus) bool {
	for _, allowed := range slotTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ProductionSlot 生产排期表 — 对应 production_slots，(job_id, building_number, level) 唯一
type ProductionSlot struct {
	SlotID         string     `gorm:"type:uuid;primaryKey"                              json:"slot_id"`
	JobID          string     `gorm:"type:uuid;not null;uniqueIndex:uk_slot_level"      json:"job_id"`
	BuildingNumber int        `gorm:"not null;default:1;uniqueIndex:uk_slot_level"      json:"building_number"`
	Level          string     `gorm:"type:varchar(50);not null;uniqueIndex:uk_slot_level" json:"level"`
	LevelOrder     int        `gorm:"not null"                                          json:"level_order"`
	PanelCount     int        `gorm:"not null;default:0"                                json:"panel_count"`
	SlotDate       time.Time  `gorm:"type:date;not null"                                json:"slot_date"`
	Status         SlotStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED'"     json:"status"`
	IsBooked       bool       `gorm:"not null;default:false"                            json:"is_booked"`
	VersionedModel

	// 关联
	Job *Job `gorm:"foreignKey:JobID;references:JobID" json:"job,omitempty"`
}

// TableName 指定表名
func (ProductionSlot) TableName() string { return "production_slots" }
