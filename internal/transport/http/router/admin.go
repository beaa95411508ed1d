package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/server"
	mdw "localmart-backend/internal/transport/http/middleware"
)

// NewAdminEngine 管理端单独起一个端口，整组路由都在 admin 面板门后
func NewAdminEngine(d Deps) *gin.Engine {
	r := server.NewEngine(d.Log)

	r.Use(
		mdw.RequestID(),
		server.GinzapLogger(d.Log),
		mdw.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	admin := r.Group("/admin/v1")
	admin.Use(
		mdw.Authenticate(d.JWT, d.Users, d.Log),
		mdw.RequireDashboard(auth.DashboardAdmin),
	)
	MountAdmin(admin, &adminModule{d})

	return r
}
