package dto

// ── 深化设计模块 DTO ──

// GenerateDraftingRequest 生成深化设计计划请求；JobID 为空时处理全部项目
type GenerateDraftingRequest struct {
	JobID string `json:"job_id" binding:"omitempty,uuid"`
}

// GenerateDraftingResponse 生成结果统计
type GenerateDraftingResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// AssignDraftingRequest 指派深化设计资源请求
type AssignDraftingRequest struct {
	AssignedResourceID string `json:"assigned_resource_id" binding:"required,uuid"`
	ProposedStartDate  string `json:"proposed_start_date"`
}

// DraftingMilestoneResponse 深化设计节点响应
type DraftingMilestoneResponse struct {
	ID                  string  `json:"id"`
	PanelID             string  `json:"panel_id"`
	PanelMark           string  `json:"panel_mark,omitempty"`
	JobID               string  `json:"job_id"`
	Level               string  `json:"level"`
	ProductionSlotID    *string `json:"production_slot_id,omitempty"`
	ProductionDate      *string `json:"production_date,omitempty"`
	DrawingDueDate      *string `json:"drawing_due_date,omitempty"`
	DraftingWindowStart *string `json:"drafting_window_start,omitempty"`
	Status              string  `json:"status"`
	AssignedResourceID  *string `json:"assigned_resource_id,omitempty"`
	ProposedStartDate   *string `json:"proposed_start_date,omitempty"`
}
