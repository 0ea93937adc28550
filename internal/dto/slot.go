package dto

// ── 生产排期模块 DTO ──

// GenerateSlotsRequest 生成排期请求
type GenerateSlotsRequest struct {
	// SkipEmptyLevels 为 true 时跳过没有构件的楼层
	SkipEmptyLevels bool `json:"skip_empty_levels"`
}

// AdjustSlotRequest 调整排期日期请求
type AdjustSlotRequest struct {
	NewDate         string `json:"new_date"         binding:"required"`
	Reason          string `json:"reason"           binding:"required,min=2,max=500"`
	ClientConfirmed bool   `json:"client_confirmed"`
	// CascadeToLater 为 true 时同项目后续楼层按相同天数顺延
	CascadeToLater bool `json:"cascade_to_later"`
}

// SlotAdjustmentListRequest 调整记录分页查询参数
type SlotAdjustmentListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// SlotResponse 生产排期响应
type SlotResponse struct {
	ID             string `json:"id"`
	JobID          string `json:"job_id"`
	BuildingNumber int    `json:"building_number"`
	Level          string `json:"level"`
	LevelOrder     int    `json:"level_order"`
	PanelCount     int    `json:"panel_count"`
	SlotDate       string `json:"slot_date"`
	Status         string `json:"status"`
	IsBooked       bool   `json:"is_booked"`
	Version        int    `json:"version"`
	UpdatedAt      string `json:"updated_at"`
}

// GenerateSlotsResponse 生成排期响应
type GenerateSlotsResponse struct {
	JobID    string         `json:"job_id"`
	Slots    []SlotResponse `json:"slots"`
	Warnings []string       `json:"warnings"`
}

// SlotAdjustmentResponse 调整记录响应
type SlotAdjustmentResponse struct {
	ID                 string  `json:"id"`
	SlotID             string  `json:"slot_id"`
	JobID              string  `json:"job_id"`
	PreviousDate       string  `json:"previous_date"`
	NewDate            string  `json:"new_date"`
	Reason             string  `json:"reason"`
	ChangedBy          string  `json:"changed_by"`
	ClientConfirmed    bool    `json:"client_confirmed"`
	Cascaded           bool    `json:"cascaded"`
	OriginAdjustmentID *string `json:"origin_adjustment_id,omitempty"`
	CreatedAt          string  `json:"created_at"`
}

// AdjustSlotResponse 调整结果：源排期 + 本次写入的全部调整记录（源记录在首位）
type AdjustSlotResponse struct {
	Slot          SlotResponse             `json:"slot"`
	Adjustments   []SlotAdjustmentResponse `json:"adjustments"`
	CascadedCount int                      `json:"cascaded_count"`
}

// LevelCoverageResponse 楼层覆盖检查（仅诊断）
type LevelCoverageResponse struct {
	JobLevels   []string       `json:"job_levels"`
	PanelLevels []string       `json:"panel_levels"`
	EmptyLevels []string       `json:"empty_levels"` // 项目楼层中没有构件的
	ExtraLevels []string       `json:"extra_levels"` // 构件楼层不在项目范围内的
	PanelCounts map[string]int `json:"panel_counts"`
	HasMismatch bool           `json:"has_mismatch"`
}
