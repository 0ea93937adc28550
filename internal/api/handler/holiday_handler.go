package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// multipartMemory 与 gin 默认值一致，超出部分落盘
const multipartMemory = 32 << 20

// HolidayHandler 节假日维护 HTTP 处理器
type HolidayHandler struct {
	holidaySvc service.HolidayService
	// fetch 按 URL 获取 ICS 内容
	fetch func(url string) (io.ReadCloser, error)
}

// NewHolidayHandler 创建 HolidayHandler
func NewHolidayHandler(holidaySvc service.HolidayService) *HolidayHandler {
	return &HolidayHandler{holidaySvc: holidaySvc, fetch: service.FetchICSContent}
}

// List 查询节假日
// GET /api/v1/holidays?calendar_type=VIC&from=2025-01-01&to=2025-12-31
func (h *HolidayHandler) List(c *gin.Context) {
	var req dto.HolidayListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 23001, "参数校验失败")
		return
	}

	list, err := h.holidaySvc.List(c.Request.Context(), &req)
	if err != nil {
		handleHolidayError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Create 新增节假日
// POST /api/v1/holidays
func (h *HolidayHandler) Create(c *gin.Context) {
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 23001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	holiday, err := h.holidaySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleHolidayError(c, err)
		return
	}

	response.Created(c, holiday)
}

// Delete 删除节假日
// DELETE /api/v1/holidays/:id
func (h *HolidayHandler) Delete(c *gin.Context) {
	id, ok := mustParam(c, "id", 23001, "节假日ID不能为空")
	if !ok {
		return
	}

	if err := h.holidaySvc.Delete(c.Request.Context(), id); err != nil {
		handleHolidayError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS 导入公共假期 ICS
// POST /api/v1/holidays/import  (multipart: calendar_type + file，或 calendar_type + url)
func (h *HolidayHandler) ImportICS(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && rejectOversizedBody(c, err) {
		return
	}
	calendarType := c.PostForm("calendar_type")
	if calendarType == "" {
		response.BadRequest(c, 23001, "calendar_type 不能为空")
		return
	}

	var body io.ReadCloser
	if file, _, err := c.Request.FormFile("file"); err == nil {
		body = file
	} else {
		url := c.PostForm("url")
		if url == "" {
			response.BadRequest(c, 23001, "请上传 ICS 文件或提供 ICS URL")
			return
		}
		body, err = h.fetch(url)
		if err != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, 23104, "ICS URL 获取失败", err.Error())
			return
		}
	}
	defer body.Close()

	result, err := h.holidaySvc.ImportICS(c.Request.Context(), calendarType, body, callerID)
	if err != nil {
		handleHolidayError(c, err)
		return
	}

	response.Created(c, result)
}

func handleHolidayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrHolidayNotFound):
		response.NotFound(c, 23101, "节假日不存在")
	case errors.Is(err, service.ErrHolidayExists):
		response.Conflict(c, 23102, "该日历类型在此日期已有节假日")
	case service.IsValidationError(err):
		response.ValidationFailed(c, 23103, err.Error())
	default:
		response.InternalError(c)
	}
}
