package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// KeyRequestID 链路追踪头：网关/客户端带来的原样沿用，没有就这里发一个
const KeyRequestID = "X-Request-ID"

// RequestID 进门先盖章，响应头和 gin context 各放一份，排查时拿着 ID 串日志
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(KeyRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set(KeyRequestID, rid)
		c.Set(KeyRequestID, rid)
		c.Next()
	}
}
