package router

import (
	"context"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/cache"
	"localmart-backend/internal/core/database"
	"localmart-backend/internal/feature/product"
	"localmart-backend/internal/transport/http/ez"
	mdw "localmart-backend/internal/transport/http/middleware"
	resp "localmart-backend/internal/transport/http/response"
	"localmart-backend/pkg/utils"
)

const (
	mostSearchedKey   = "products:most-searched"
	mostSearchedTTL   = 5 * time.Minute
	mostSearchedLimit = 6
)

type productModule struct{ d Deps }

func (m *productModule) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/products")
	g.Use(mdw.Authenticate(m.d.JWT, m.d.Users, m.d.Log))
	e := ez.New(g)

	m.mountCreate(e)
	m.mountList(e)
	m.mountListByDealer(e)
	m.mountUpdate(e)
	m.mountDelete(e)
	m.mountSearch(e)
	m.mountFilter(e)
	m.mountMostSearched(e)
}

func (m *productModule) mountCreate(e ez.EZ) {
	type in struct {
		DealerID    int64  `form:"dealerId"`
		Title       string `form:"title"`
		Description string `form:"description"`
		Price       string `form:"price"`
		PerItem     string `form:"perItem"`
		ShopName    string `form:"shopName"`
		ShopAddress string `form:"shopAddress"`
		State       string `form:"state"`
		City        string `form:"city"`
		Area        string `form:"area"`
		Category    string `form:"category"`
		Phone       string `form:"phone"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method:    http.MethodPost,
		Path:      "/create-product",
		Binder:    ez.BindForm,
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			for _, f := range []struct{ name, v string }{
				{"Title", in.Title}, {"Description", in.Description},
				{"Price", in.Price}, {"ShopName", in.ShopName}, {"Category", in.Category},
			} {
				if strings.TrimSpace(f.v) == "" {
					return ez.Result{}, ez.BadRequest("Title, description, price, shop name, and category are required")
				}
			}

			imagePath, err := m.saveImage(c)
			if err != nil {
				return ez.Result{}, err
			}

			dealerID := in.DealerID
			if dealerID == 0 {
				dealerID = mdw.UserFrom(c).ID
			}

			p := &product.Product{
				DealerID:    dealerID,
				Title:       strings.TrimSpace(in.Title),
				Description: strings.TrimSpace(in.Description),
				Image:       imagePath,
				Price:       strings.TrimSpace(in.Price),
				PerItem:     in.PerItem,
				ShopName:    strings.TrimSpace(in.ShopName),
				ShopAddress: in.ShopAddress,
				State:       in.State,
				City:        in.City,
				Area:        in.Area,
				Category:    strings.TrimSpace(in.Category),
				Phone:       in.Phone,
			}
			if err := m.d.Products.Create(c.Request.Context(), p); err != nil {
				if database.IsDupKey(err) {
					return ez.Result{}, ez.Conflict("Product with this ID already exists")
				}
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			m.dropMostSearched(c.Request.Context())
			return ez.Created("Product created successfully", resp.Body{"product": m.withImageURL(c, p)}), nil
		},
	})
}

func (m *productModule) mountList(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/get-all-product",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			ps, err := m.d.Products.FindAll(c.Request.Context())
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Products retrieved successfully", resp.Body{"products": m.withImageURLs(c, ps)}), nil
		},
	})
}

// 路由名字叫 by-id，语义一直是"某个 dealer 的全部商品"——历史客户端依赖，保持不动
func (m *productModule) mountListByDealer(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/get-all-product-by-id/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			dealerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return ez.Result{}, ez.BadRequest("Invalid product ID format")
			}
			ps, err := m.d.Products.FindByDealer(c.Request.Context(), dealerID)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Product retrieved successfully", resp.Body{"product": m.withImageURLs(c, ps)}), nil
		},
	})
}

func (m *productModule) mountUpdate(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method:    http.MethodPut,
		Path:      "/update-product/:id",
		Binder:    ez.BindNone, // 区分"字段缺席"和"传了空值"，手动从表单取
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return ez.Result{}, ez.BadRequest("Invalid product ID format")
			}

			fields := map[string]any{}
			for form, col := range map[string]string{
				"title": "title", "description": "description", "price": "price",
				"perItem": "per_item", "shopName": "shop_name", "shopAddress": "shop_address",
				"state": "state", "city": "city", "area": "area",
				"category": "category", "phone": "phone",
			} {
				if v, ok := c.GetPostForm(form); ok {
					if strings.TrimSpace(v) == "" {
						return ez.Result{}, ez.BadRequest(form + " must be a non-empty string")
					}
					fields[col] = strings.TrimSpace(v)
				}
			}
			if v, ok := c.GetPostForm("dealerId"); ok {
				dealerID, err := strconv.ParseInt(v, 10, 64)
				if err != nil || dealerID <= 0 {
					return ez.Result{}, ez.BadRequest("dealerId must be a positive number")
				}
				fields["dealer_id"] = dealerID
			}

			imagePath, err := m.saveImage(c)
			if err != nil {
				return ez.Result{}, err
			}
			if imagePath != "" {
				fields["image"] = imagePath
			}

			if len(fields) == 0 {
				return ez.Result{}, ez.BadRequest("At least one field is required to update")
			}

			p, err := m.d.Products.Update(c.Request.Context(), id, fields)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if p == nil {
				return ez.Result{}, ez.NotFound("Product not found")
			}
			m.dropMostSearched(c.Request.Context())
			return ez.OK("Product updated successfully", resp.Body{"product": m.withImageURL(c, p)}), nil
		},
	})
}

func (m *productModule) mountDelete(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method:    http.MethodDelete,
		Path:      "/delete-product/:id",
		Binder:    ez.BindNone,
		Dashboard: auth.DashboardDealer,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return ez.Result{}, ez.BadRequest("Invalid product ID format")
			}
			p, err := m.d.Products.Delete(c.Request.Context(), id)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if p == nil {
				return ez.Result{}, ez.NotFound("Product not found")
			}
			m.dropMostSearched(c.Request.Context())
			return ez.OK("Product deleted successfully", resp.Body{"product": m.withImageURL(c, p)}), nil
		},
	})
}

func (m *productModule) mountSearch(e ez.EZ) {
	type in struct {
		Title string `form:"title"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodGet,
		Path:   "/search-products",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			if strings.TrimSpace(in.Title) == "" {
				return ez.Result{}, ez.BadRequest("Title query parameter is required")
			}
			ps, err := m.d.Products.SearchByTitle(c.Request.Context(), in.Title)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Products retrieved successfully", resp.Body{"products": m.withImageURLs(c, ps)}), nil
		},
	})
}

func (m *productModule) mountFilter(e ez.EZ) {
	type in struct {
		State string `form:"state"`
		City  string `form:"city"`
		Area  string `form:"area"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodGet,
		Path:   "/filter-products",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			ps, err := m.d.Products.Filter(c.Request.Context(), in.State, in.City, in.Area)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Products retrieved successfully", resp.Body{"products": m.withImageURLs(c, ps)}), nil
		},
	})
}

func (m *productModule) mountMostSearched(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/most-searched-products",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			ctx := c.Request.Context()
			load := func(ctx context.Context) ([]product.Product, error) {
				return m.d.Products.MostSearched(ctx, mostSearchedLimit)
			}
			var ps []product.Product
			var err error
			if m.d.Cache != nil {
				ps, err = cache.GetOrLoadJSON(m.d.Cache, ctx, mostSearchedKey, mostSearchedTTL, load)
			} else {
				ps, err = load(ctx)
			}
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			// 缓存里存相对路径，出口再补 baseURL，换域名不用清缓存
			return ez.OK("Products retrieved successfully", resp.Body{"products": m.withImageURLs(c, ps)}), nil
		},
	})
}

// publicBaseURL 配置优先；没配 base_url 时按本次请求的 Host 推
func (m *productModule) publicBaseURL(c *gin.Context) string {
	if m.d.BaseURL != "" {
		return m.d.BaseURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

// withImageURL 出库的相对路径补成完整地址，历史数据里已是完整 URL 的原样返回
func (m *productModule) withImageURL(c *gin.Context, p *product.Product) *product.Product {
	if p != nil {
		p.Image = utils.ToFullURL(m.publicBaseURL(c), p.Image)
	}
	return p
}

func (m *productModule) withImageURLs(c *gin.Context, ps []product.Product) []product.Product {
	base := m.publicBaseURL(c)
	for i := range ps {
		ps[i].Image = utils.ToFullURL(base, ps[i].Image)
	}
	return ps
}

// dropMostSearched 商品写成功后热榜缓存立即失效，不等 TTL
func (m *productModule) dropMostSearched(ctx context.Context) {
	if m.d.Cache != nil {
		m.d.Cache.Invalidate(ctx, mostSearchedKey)
	}
}

// saveImage 可选图片：≤5MB、扩展名必须是图片；返回相对路径 /uploads/<file>
func (m *productModule) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		// 没传图片不是错误
		return "", nil
	}
	return m.storeUpload(c, file)
}

func (m *productModule) storeUpload(c *gin.Context, file *multipart.FileHeader) (string, error) {
	maxBytes := int64(m.d.UploadMaxMB) << 20
	if file.Size > maxBytes {
		return "", ez.BadRequest("File size too large. Maximum allowed size is " +
			strconv.Itoa(m.d.UploadMaxMB) + "MB")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", ez.BadRequest("Only image files are allowed")
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(m.d.UploadsDir, name)); err != nil {
		return "", ez.Internal("Failed to store uploaded image", err)
	}
	return "/uploads/" + name, nil
}
