package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

// ActorHeader 上游网关完成认证后注入的操作人 ID
const ActorHeader = "X-User-ID"

const actorMaxLen = 64

// Actor 操作人中间件
// 认证由上游网关负责，这里只读取 X-User-ID 注入上下文（user_id），缺失时返回 401
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader(ActorHeader)
		if actor == "" || len(actor) > actorMaxLen {
			response.Unauthorized(c, 10002, "缺少操作人标识")
			c.Abort()
			return
		}

		c.Set("user_id", actor)
		c.Next()
	}
}
