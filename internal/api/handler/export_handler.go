package handler

import (
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSlots 导出项目生产排期
// GET /api/v1/jobs/:id/slots/export
func (h *ExportHandler) ExportSlots(c *gin.Context) {
	jobID, ok := mustParam(c, "id", 24001, "项目ID不能为空")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSlots(c.Request.Context(), jobID)
	if err != nil {
		handleExportError(c, err)
		return
	}

	response.File(c, xlsxContentType, url.QueryEscape(filename), buf.Bytes())
}

func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		response.NotFound(c, 24101, "项目不存在")
	case errors.Is(err, service.ErrExportNoSlots):
		response.NotFound(c, 24102, "该项目暂无生产排期")
	default:
		response.InternalError(c)
	}
}
