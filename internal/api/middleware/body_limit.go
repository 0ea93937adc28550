package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// BodyLimitCodeKey 上下文中记录当前路由超限错误码的键，处理器读取请求体失败时据此返回 413
const BodyLimitCodeKey = "body_limit_code"

// BodyLimit 按路由限制请求体大小，code 为超限时返回的业务错误码。
// 声明了 Content-Length 的请求在进入处理器前拒绝；分块上传由 MaxBytesReader 在读取时截断。
func BodyLimit(maxBytes int64, code int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.PayloadTooLarge(c, code, maxBytes)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Set(BodyLimitCodeKey, code)
		c.Next()
	}
}
