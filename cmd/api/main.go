package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	stripeclient "github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/cache"
	"localmart-backend/internal/core/config"
	"localmart-backend/internal/core/database"
	"localmart-backend/internal/core/keepalive"
	"localmart-backend/internal/core/logger"
	"localmart-backend/internal/core/mail"
	"localmart-backend/internal/core/server"
	"localmart-backend/internal/feature/product"
	"localmart-backend/internal/feature/shop"
	"localmart-backend/internal/feature/user"
	"localmart-backend/internal/repo"
	"localmart-backend/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	// 数据库（失败直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.User{}, &shop.Shop{}, &product.Product{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 图片目录
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatal("uploads dir", zap.Error(err))
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLDays) * 24 * time.Hour,
	}

	users := repo.NewUserRepo(db)

	var redisCache *cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	var mailer *mail.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.New(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	}

	var stripeAPI *stripeclient.API
	if cfg.Stripe.SecretKey != "" {
		stripeAPI = stripeclient.New(cfg.Stripe.SecretKey, nil)
	}

	deps := router.Deps{
		Log:      log,
		DB:       db,
		JWT:      jwter,
		Users:    users,
		Shops:    repo.NewShopRepo(db),
		Products: repo.NewProductRepo(db),
		Cache:    redisCache,
		Mailer:   mailer,
		Stripe:   stripeAPI,

		BaseURL:     baseURL(cfg),
		UploadsDir:  cfg.Uploads.Dir,
		UploadMaxMB: cfg.Uploads.MaxSizeMB,

		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
	}

	r := router.NewAPIEngine(deps)

	// 保活 ping + 每日试用巡检
	sched := keepalive.New(keepalive.Options{
		PingURL: cfg.KeepAlive.PingURL,
		Timeout: time.Duration(cfg.KeepAlive.TimeoutSec) * time.Second,
	}, users, log)
	if err := sched.Start(); err != nil {
		log.Fatal("scheduler start failed", zap.Error(err))
	}
	defer sched.Stop()

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	log.Info("marketplace api starting",
		zap.String("addr", addr),
		zap.String("base_url", deps.BaseURL),
		zap.String("health", deps.BaseURL+"/health"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("marketplace api started")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("marketplace api stopped gracefully")
}

func baseURL(cfg *config.Config) string {
	if cfg.App.BaseURL != "" {
		return cfg.App.BaseURL
	}
	host := cfg.App.HTTP.Host
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return "http://" + host + ":" + fmt.Sprint(cfg.App.HTTP.Port)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
