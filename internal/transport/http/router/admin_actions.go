package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"localmart-backend/internal/transport/http/ez"
	resp "localmart-backend/internal/transport/http/response"
)

type adminModule struct{ d Deps }

func (m *adminModule) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)
	m.mountListUsers(e)
	m.mountBanUser(e)
}

// --- 用户列表 ---
func (m *adminModule) mountListUsers(e ez.EZ) {
	type in struct {
		Offset      int    `form:"offset,default=0"`
		Limit       int    `form:"limit,default=20"`
		Q           string `form:"q"`            // 可选：按邮箱/姓名模糊搜
		WithDeleted bool   `form:"with_deleted"` // 是否包含已封禁
	}
	type row struct {
		ID           int64     `json:"id"`
		Fullname     string    `json:"fullname"`
		Email        string    `json:"email"`
		UserType     string    `json:"user_type"`
		City         string    `json:"city"`
		IsSubscribed bool      `json:"is_subscribed"`
		CreatedAt    time.Time `json:"created_at"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			if in.Limit <= 0 || in.Limit > 100 {
				in.Limit = 20
			}
			us, total, err := m.d.Users.List(c.Request.Context(), in.Offset, in.Limit, in.Q, in.WithDeleted)
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to list users", err)
			}
			items := make([]row, 0, len(us))
			for _, u := range us {
				items = append(items, row{
					ID: u.ID, Fullname: u.Fullname, Email: u.Email,
					UserType: u.UserType, City: u.City,
					IsSubscribed: u.IsSubscribed, CreatedAt: u.CreatedAt,
				})
			}
			return ez.OK("Users retrieved successfully", resp.Body{
				"total": total,
				"items": items,
			}), nil
		},
	})
}

// --- 封禁（软删，序号保留） ---
func (m *adminModule) mountBanUser(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodPost,
		Path:   "/users/:id/ban",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return ez.Result{}, ez.BadRequest("Invalid user ID format")
			}
			n, err := m.d.Users.SoftDelete(c.Request.Context(), id)
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to ban user", err)
			}
			if n == 0 {
				return ez.Result{}, ez.NotFound("User not found")
			}
			return ez.OK("User banned successfully", resp.Body{"id": id}), nil
		},
	})
}
