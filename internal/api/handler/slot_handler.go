package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// SlotHandler 生产排期模块 HTTP 处理器
type SlotHandler struct {
	slotSvc service.SlotService
}

// NewSlotHandler 创建 SlotHandler
func NewSlotHandler(slotSvc service.SlotService) *SlotHandler {
	return &SlotHandler{slotSvc: slotSvc}
}

// GenerateSlots 重新生成项目排期
// POST /api/v1/jobs/:id/slots/generate
func (h *SlotHandler) GenerateSlots(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 20001, "项目ID不能为空")
	if !ok {
		return
	}

	var req dto.GenerateSlotsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 20001, "参数校验失败")
			return
		}
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.slotSvc.GenerateSlots(c.Request.Context(), jobID, &req, callerID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, result)
}

// ListSlots 获取项目排期
// GET /api/v1/jobs/:id/slots
func (h *SlotHandler) ListSlots(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 20001, "项目ID不能为空")
	if !ok {
		return
	}

	slots, err := h.slotSvc.ListSlots(c.Request.Context(), jobID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, gin.H{"list": slots})
}

// AdjustSlot 调整排期日期
// PUT /api/v1/slots/:id/adjust
func (h *SlotHandler) AdjustSlot(c *gin.Context) {
	slotID, ok := mustParam(c, "id", 20001, "排期ID不能为空")
	if !ok {
		return
	}

	var req dto.AdjustSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.slotSvc.AdjustSlot(c.Request.Context(), slotID, &req, callerID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, result)
}

// BookSlot 预订排期
// POST /api/v1/slots/:id/book
func (h *SlotHandler) BookSlot(c *gin.Context) {
	h.transition(c, h.slotSvc.BookSlot)
}

// CompleteSlot 标记排期完成
// POST /api/v1/slots/:id/complete
func (h *SlotHandler) CompleteSlot(c *gin.Context) {
	h.transition(c, h.slotSvc.CompleteSlot)
}

func (h *SlotHandler) transition(c *gin.Context, fn func(ctx context.Context, slotID, callerID string) (*dto.SlotResponse, error)) {
	slotID, ok := mustParam(c, "id", 20001, "排期ID不能为空")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	slot, err := fn(c.Request.Context(), slotID, callerID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, slot)
}

// DeleteSlot 删除排期
// DELETE /api/v1/slots/:id
func (h *SlotHandler) DeleteSlot(c *gin.Context) {
	slotID, ok := mustParam(c, "id", 20001, "排期ID不能为空")
	if !ok {
		return
	}

	if err := h.slotSvc.DeleteSlot(c.Request.Context(), slotID); err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAdjustments 获取排期调整记录
// GET /api/v1/slots/:id/adjustments
func (h *SlotHandler) ListAdjustments(c *gin.Context) {
	slotID, ok := mustParam(c, "id", 20001, "排期ID不能为空")
	if !ok {
		return
	}

	var req dto.SlotAdjustmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 20001, "参数校验失败")
		return
	}

	logs, total, err := h.slotSvc.ListAdjustments(c.Request.Context(), slotID, &req)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OKPage(c, logs, total, req.GetPage(), req.GetPageSize())
}

// CheckLevelCoverage 项目楼层与构件楼层对比
// GET /api/v1/jobs/:id/level-coverage
func (h *SlotHandler) CheckLevelCoverage(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 20001, "项目ID不能为空")
	if !ok {
		return
	}

	result, err := h.slotSvc.CheckLevelCoverage(c.Request.Context(), jobID)
	if err != nil {
		handleSlotError(c, err)
		return
	}

	response.OK(c, result)
}

// handleSlotError 统一处理排期模块业务错误
func handleSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 20101, "项目不存在")
	case errors.Is(err, service.ErrSlotNotFound):
		response.NotFound(c, 20102, "生产排期不存在")
	case service.IsValidationError(err):
		response.ValidationFailed(c, 20103, err.Error())
	case errors.Is(err, service.ErrInvalidSlotTransition):
		response.Conflict(c, 20104, "排期当前状态不允许该操作")
	case errors.Is(err, service.ErrRegenerationInProgress):
		response.Conflict(c, 20105, "该项目排期正在重新生成，请稍后重试")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 20106, "排期已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
