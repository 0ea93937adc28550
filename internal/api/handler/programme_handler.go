package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// ProgrammeHandler 楼层周期表模块 HTTP 处理器
type ProgrammeHandler struct {
	programmeSvc service.ProgrammeService
}

// NewProgrammeHandler 创建 ProgrammeHandler
func NewProgrammeHandler(programmeSvc service.ProgrammeService) *ProgrammeHandler {
	return &ProgrammeHandler{programmeSvc: programmeSvc}
}

// GetProgramme 获取项目周期表
// GET /api/v1/jobs/:id/programme
func (h *ProgrammeHandler) GetProgramme(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 22001, "项目ID不能为空")
	if !ok {
		return
	}

	entries, err := h.programmeSvc.GetProgramme(c.Request.Context(), jobID)
	if err != nil {
		handleProgrammeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// SaveProgramme 整体保存周期表
// PUT /api/v1/jobs/:id/programme
func (h *ProgrammeHandler) SaveProgramme(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 22001, "项目ID不能为空")
	if !ok {
		return
	}

	var req dto.SaveProgrammeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if rejectOversizedBody(c, err) {
			return
		}
		response.BadRequest(c, 22001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entries, err := h.programmeSvc.SaveProgramme(c.Request.Context(), jobID, &req, callerID)
	if err != nil {
		handleProgrammeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// SplitEntry 拆分浇筑
// POST /api/v1/jobs/:id/programme/:entryId/split
func (h *ProgrammeHandler) SplitEntry(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 22001, "项目ID不能为空")
	if !ok {
		return
	}
	entryID, ok := mustParam(c, "entryId", 22001, "条目ID不能为空")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entries, err := h.programmeSvc.SplitEntry(c.Request.Context(), jobID, entryID, callerID)
	if err != nil {
		handleProgrammeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ReorderEntries 调整条目顺序
// PUT /api/v1/jobs/:id/programme/reorder
func (h *ProgrammeHandler) ReorderEntries(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 22001, "项目ID不能为空")
	if !ok {
		return
	}

	var req dto.ReorderProgrammeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 22001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entries, err := h.programmeSvc.ReorderEntries(c.Request.Context(), jobID, &req, callerID)
	if err != nil {
		handleProgrammeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// DeleteEntry 删除条目
// DELETE /api/v1/jobs/:id/programme/:entryId
func (h *ProgrammeHandler) DeleteEntry(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 22001, "项目ID不能为空")
	if !ok {
		return
	}
	entryID, ok := mustParam(c, "entryId", 22001, "条目ID不能为空")
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entries, err := h.programmeSvc.DeleteEntry(c.Request.Context(), jobID, entryID, callerID)
	if err != nil {
		handleProgrammeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

func handleProgrammeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 22101, "项目不存在")
	case errors.Is(err, service.ErrProgrammeEntryNotFound):
		response.NotFound(c, 22102, "周期表条目不存在")
	case service.IsValidationError(err):
		response.ValidationFailed(c, 22103, err.Error())
	default:
		response.InternalError(c)
	}
}
