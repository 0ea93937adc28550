package handler

import "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Slot      *SlotHandler
	Drafting  *DraftingHandler
	Programme *ProgrammeHandler
	Holiday   *HolidayHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Slot:      NewSlotHandler(svc.Slot),
		Drafting:  NewDraftingHandler(svc.Drafting),
		Programme: NewProgrammeHandler(svc.Programme),
		Holiday:   NewHolidayHandler(svc.Holiday),
		Export:    NewExportHandler(svc.Export),
	}
}
