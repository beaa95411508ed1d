package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/database"
	"localmart-backend/internal/feature/shop"
	"localmart-backend/internal/transport/http/ez"
	mdw "localmart-backend/internal/transport/http/middleware"
	resp "localmart-backend/internal/transport/http/response"
)

type shopModule struct{ d Deps }

func (m *shopModule) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/shops")
	g.Use(mdw.Authenticate(m.d.JWT, m.d.Users, m.d.Log))
	e := ez.New(g)

	m.mountCreate(e)
	m.mountList(e)
	m.mountGet(e)
	m.mountUpdate(e)
	m.mountDelete(e)
}

func (m *shopModule) mountCreate(e ez.EZ) {
	type in struct {
		UserID      int64  `json:"user_id" binding:"required"`
		ShopName    string `json:"shop_name" binding:"required"`
		ShopAddress string `json:"shop_address" binding:"required"`
		PhoneNo     string `json:"phone_no" binding:"required"`
		State       string `json:"state" binding:"required"`
		City        string `json:"city" binding:"required"`
		Area        string `json:"area" binding:"required"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method:    http.MethodPost,
		Path:      "/create-shop",
		Binder:    ez.BindJSON,
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			s := &shop.Shop{
				UserID:      in.UserID,
				ShopName:    in.ShopName,
				ShopAddress: in.ShopAddress,
				PhoneNo:     in.PhoneNo,
				State:       in.State,
				City:        in.City,
				Area:        in.Area,
			}
			if err := m.d.Shops.Create(c.Request.Context(), s); err != nil {
				if database.IsDupKey(err) {
					return ez.Result{}, ez.Conflict("Shop with this ID already exists, please retry")
				}
				return ez.Result{}, ez.Internal("Failed to create shop", err)
			}
			return ez.Created("Shop created successfully", resp.Body{"data": s}), nil
		},
	})
}

func (m *shopModule) mountList(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/get-shops",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			shops, err := m.d.Shops.FindAll(c.Request.Context())
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to retrieve shops", err)
			}
			return ez.OK("Shops retrieved successfully", resp.Body{"data": shops}), nil
		},
	})
}

func (m *shopModule) mountGet(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/get-shop/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := parseID(c)
			if err != nil {
				return ez.Result{}, err
			}
			s, err := m.d.Shops.FindByID(c.Request.Context(), id)
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to retrieve shop", err)
			}
			if s == nil {
				return ez.Result{}, ez.NotFound("Shop not found")
			}
			return ez.OK("Shop retrieved successfully", resp.Body{"data": s}), nil
		},
	})
}

func (m *shopModule) mountUpdate(e ez.EZ) {
	type in struct {
		ShopName    *string `json:"shop_name"`
		ShopAddress *string `json:"shop_address"`
		PhoneNo     *string `json:"phone_no"`
		State       *string `json:"state"`
		City        *string `json:"city"`
		Area        *string `json:"area"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method:    http.MethodPut,
		Path:      "/update-shop/:id",
		Binder:    ez.BindJSON,
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			id, err := parseID(c)
			if err != nil {
				return ez.Result{}, err
			}
			fields := map[string]any{}
			if in.ShopName != nil {
				fields["shop_name"] = *in.ShopName
			}
			if in.ShopAddress != nil {
				fields["shop_address"] = *in.ShopAddress
			}
			if in.PhoneNo != nil {
				fields["phone_no"] = *in.PhoneNo
			}
			if in.State != nil {
				fields["state"] = *in.State
			}
			if in.City != nil {
				fields["city"] = *in.City
			}
			if in.Area != nil {
				fields["area"] = *in.Area
			}
			if len(fields) == 0 {
				return ez.Result{}, ez.BadRequest("At least one field is required to update")
			}
			s, err := m.d.Shops.Update(c.Request.Context(), id, fields)
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to update shop", err)
			}
			if s == nil {
				return ez.Result{}, ez.NotFound("Shop not found")
			}
			return ez.OK("Shop updated successfully", resp.Body{"data": s}), nil
		},
	})
}

func (m *shopModule) mountDelete(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method:    http.MethodDelete,
		Path:      "/delete-shop/:id",
		Binder:    ez.BindNone,
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := parseID(c)
			if err != nil {
				return ez.Result{}, err
			}
			s, err := m.d.Shops.Delete(c.Request.Context(), id)
			if err != nil {
				return ez.Result{}, ez.Internal("Failed to delete shop", err)
			}
			if s == nil {
				return ez.Result{}, ez.NotFound("Shop not found")
			}
			return ez.OK("Shop deleted successfully", resp.Body{"data": s}), nil
		},
	})
}

// parseID 路径参数 :id 必须是数字序号
func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, ez.BadRequest("Invalid ID format")
	}
	return id, nil
}
