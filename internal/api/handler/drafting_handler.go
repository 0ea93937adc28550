package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// DraftingHandler 深化设计模块 HTTP 处理器
type DraftingHandler struct {
	draftingSvc service.DraftingService
}

// NewDraftingHandler 创建 DraftingHandler
func NewDraftingHandler(draftingSvc service.DraftingService) *DraftingHandler {
	return &DraftingHandler{draftingSvc: draftingSvc}
}

// Generate 由生产排期生成深化设计节点
// POST /api/v1/drafting/generate
func (h *DraftingHandler) Generate(c *gin.Context) {
	var req dto.GenerateDraftingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 21001, "参数校验失败")
			return
		}
	}

	result, err := h.draftingSvc.GenerateDraftingProgram(c.Request.Context(), &req)
	if err != nil {
		handleDraftingError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMilestones 获取项目深化设计节点
// GET /api/v1/jobs/:id/drafting
func (h *DraftingHandler) ListMilestones(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 21001, "项目ID不能为空")
	if !ok {
		return
	}

	list, err := h.draftingSvc.ListMilestones(c.Request.Context(), jobID)
	if err != nil {
		handleDraftingError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Assign 指派深化设计资源
// PUT /api/v1/drafting/:id/assign
func (h *DraftingHandler) Assign(c *gin.Context) {
	id, ok := mustParam(c, "id", 21001, "节点ID不能为空")
	if !ok {
		return
	}

	var req dto.AssignDraftingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 21001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.draftingSvc.AssignDraftingResource(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleDraftingError(c, err)
		return
	}

	response.OK(c, result)
}

func handleDraftingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrMilestoneNotFound):
		response.NotFound(c, 21101, "深化设计节点不存在")
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 21102, "项目不存在")
	case errors.Is(err, service.ErrMilestoneCompleted):
		response.Conflict(c, 21103, "深化设计节点已完成，不可重新指派")
	case errors.Is(err, service.ErrInvalidDate):
		response.ValidationFailed(c, 21104, err.Error())
	default:
		response.InternalError(c)
	}
}
