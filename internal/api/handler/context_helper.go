package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/middleware"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// MustGetUserID 从 Gin 上下文中提取操作人 ID（由 Actor 中间件注入）。
// 未注入时写入 401 响应并返回 false，调用方应直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "缺少操作人标识")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "缺少操作人标识")
		return "", false
	}
	return s, true
}

// mustParam 读取路径参数，为空时写入 400
func mustParam(c *gin.Context, name string, code int, message string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		response.BadRequest(c, code, message)
		return "", false
	}
	return v, true
}

// rejectOversizedBody 请求体读取因超出路由上限失败时写入 413 并返回 true
func rejectOversizedBody(c *gin.Context, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	code := c.GetInt(middleware.BodyLimitCodeKey)
	if code == 0 {
		code = 10005
	}
	response.PayloadTooLarge(c, code, tooLarge.Limit)
	return true
}
