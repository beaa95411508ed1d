package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/feature/user"
	resp "localmart-backend/internal/transport/http/response"
)

// gin context 键
const (
	CtxUser   = "user"   // *user.User（口令散列不序列化）
	CtxClaims = "claims" // *auth.Claims
)

// UserFinder 认证门只需要按序号查用户
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// Authenticate 第一道门：取 Bearer 令牌 → 验签/验期 → 回库确认用户还在。
// 四种失败各报各的 401 文案；查库挂了是 500，不能伪装成鉴权失败。
func Authenticate(j *auth.JWTer, users UserFinder, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Access token is required"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			if errors.Is(err, auth.ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Token expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Invalid token"))
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			l.Error("auth user lookup failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, resp.Fail("Internal server error"))
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Fail("Invalid token - user not found"))
			return
		}

		c.Set(CtxUser, u)
		c.Set(CtxClaims, claims)
		c.Next()
	}
}

// RequireDashboard 第二道门（按路由挂）：令牌的面板集合里必须有指定面板。
// 纯策略判断，不查库不重试。
func RequireDashboard(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil || len(claims.DashboardAccess) == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Fail("Access denied - no dashboard permissions"))
			return
		}
		if !auth.HasDashboard(claims.DashboardAccess, name) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				resp.Fail("Access denied - "+name+" dashboard access required"))
			return
		}
		c.Next()
	}
}

func UserFrom(c *gin.Context) *user.User {
	if v, ok := c.Get(CtxUser); ok {
		if u, ok := v.(*user.User); ok {
			return u
		}
	}
	return nil
}

func ClaimsFrom(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(CtxClaims); ok {
		if cl, ok := v.(*auth.Claims); ok {
			return cl
		}
	}
	return nil
}
