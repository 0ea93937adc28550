package dto

// ── 楼层周期表模块 DTO ──

// ProgrammeEntryInput 周期表条目输入；数组顺序即施工顺序
type ProgrammeEntryInput struct {
	ID             string  `json:"id"              binding:"omitempty,uuid"` // 为空表示新条目
	BuildingNumber int     `json:"building_number" binding:"omitempty,min=1"`
	Level          string  `json:"level"           binding:"required,max=50"`
	PourLabel      *string `json:"pour_label"      binding:"omitempty,max=20"`
	CycleDays      int     `json:"cycle_days"      binding:"required,min=1"`
	ManualStart    *string `json:"manual_start"`
	ManualEnd      *string `json:"manual_end"`
	Notes          string  `json:"notes"           binding:"max=1000"`
}

// SaveProgrammeRequest 整体保存周期表请求
type SaveProgrammeRequest struct {
	Entries []ProgrammeEntryInput `json:"entries" binding:"dive"`
}

// ReorderProgrammeRequest 调整条目顺序请求
type ReorderProgrammeRequest struct {
	EntryIDs []string `json:"entry_ids" binding:"required,min=1,dive,uuid"`
}

// ProgrammeEntryResponse 周期表条目响应
type ProgrammeEntryResponse struct {
	ID             string  `json:"id"`
	JobID          string  `json:"job_id"`
	BuildingNumber int     `json:"building_number"`
	Level          string  `json:"level"`
	LevelOrder     float64 `json:"level_order"`
	SequenceOrder  int     `json:"sequence_order"`
	PourLabel      *string `json:"pour_label,omitempty"`
	CycleDays      int     `json:"cycle_days"`
	EstimatedStart *string `json:"estimated_start,omitempty"`
	EstimatedEnd   *string `json:"estimated_end,omitempty"`
	ManualStart    *string `json:"manual_start,omitempty"`
	ManualEnd      *string `json:"manual_end,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}
