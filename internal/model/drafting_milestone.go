package model

import "time"

// DraftingStatus 深化设计状态
type DraftingStatus string

const (
	DraftingStatusNotScheduled DraftingStatus = "NOT_SCHEDULED"
	DraftingStatusScheduled    DraftingStatus = "SCHEDULED"
	DraftingStatusInProgress   DraftingStatus = "IN_PROGRESS"
	DraftingStatusCompleted    DraftingStatus = "COMPLETED"
	DraftingStatusOnHold       DraftingStatus = "ON_HOLD"
)

// DraftingMilestone 深化设计节点表 — 对应 drafting_milestones，每个构件一行
type DraftingMilestone struct {
	MilestoneID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"milestone_id"`
	PanelID             string         `gorm:"type:uuid;not null;uniqueIndex"                   json:"panel_id"`
	JobID               string         `gorm:"type:uuid;not null;index"                         json:"job_id"`
	Level               string         `gorm:"type:varchar(50);not null"                        json:"level"`
	ProductionSlotID    *string        `gorm:"type:uuid"                                        json:"production_slot_id,omitempty"`
	ProductionDate      *time.Time     `gorm:"type:date"                                        json:"production_date,omitempty"`
	DrawingDueDate      *time.Time     `gorm:"type:date"                                        json:"drawing_due_date,omitempty"`
	DraftingWindowStart *time.Time     `gorm:"type:date"                                        json:"drafting_window_start,omitempty"`
	Status              DraftingStatus `gorm:"type:varchar(20);not null;default:'NOT_SCHEDULED'" json:"status"`
	AssignedResourceID  *string        `gorm:"type:uuid"                                        json:"assigned_resource_id,omitempty"`
	ProposedStartDate   *time.Time     `gorm:"type:date"                                        json:"proposed_start_date,omitempty"`
	BaseModel

	// 关联
	Panel *Panel `gorm:"foreignKey:PanelID;references:PanelID" json:"panel,omitempty"`
}

// TableName 指定表名
func (DraftingMilestone) TableName() string { return "drafting_milestones" }
