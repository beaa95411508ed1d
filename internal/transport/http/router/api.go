package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/cache"
	"localmart-backend/internal/core/mail"
	"localmart-backend/internal/core/server"
	"localmart-backend/internal/repo"
	mdw "localmart-backend/internal/transport/http/middleware"
)

// Deps 路由层全部外部依赖，构造时显式注入（不读环境变量）
type Deps struct {
	Log      *zap.Logger
	DB       *gorm.DB
	JWT      *auth.JWTer
	Users    *repo.UserRepo
	Shops    *repo.ShopRepo
	Products *repo.ProductRepo
	Cache    *cache.Cache      // 可为 nil：商品热榜退化为直查
	Mailer   *mail.Mailer      // 可为 nil：找回密码只记日志
	Stripe   *stripeclient.API // 可为 nil：创建支付单报未配置；不用 SDK 包级 Key，进程里可以并存多个实例

	BaseURL     string // 拼图片 URL 和重置链接
	UploadsDir  string
	UploadMaxMB int

	StripeWebhookSecret string
}

func NewAPIEngine(d Deps) *gin.Engine {
	r := server.NewEngine(d.Log)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(d.Log),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 保活 ping 打的就是这里
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "API is running...") })
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 商品图片静态目录
	r.Static("/uploads", d.UploadsDir)

	api := r.Group("/api")
	MountAPI(api,
		&userModule{d},
		&shopModule{d},
		&productModule{d},
		&paymentModule{d},
	)

	return r
}
