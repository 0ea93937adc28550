package dto

// ── 节假日模块 DTO ──

// HolidayListRequest 节假日查询参数
type HolidayListRequest struct {
	CalendarType string `form:"calendar_type" binding:"omitempty,oneof=VIC NSW BOTH"`
	From         string `form:"from"`
	To           string `form:"to"`
}

// CreateHolidayRequest 新增节假日请求
type CreateHolidayRequest struct {
	CalendarType string `json:"calendar_type" binding:"required,oneof=VIC NSW BOTH"`
	Date         string `json:"date"          binding:"required"`
	Name         string `json:"name"          binding:"required,max=200"`
}

// HolidayResponse 节假日响应
type HolidayResponse struct {
	ID           string `json:"id"`
	CalendarType string `json:"calendar_type"`
	Date         string `json:"date"`
	Name         string `json:"name"`
}

// ImportHolidaysResponse ICS 导入结果
type ImportHolidaysResponse struct {
	Parsed  int `json:"parsed"`
	Written int `json:"written"`
}
