package router

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"localmart-backend/internal/transport/http/ez"
	resp "localmart-backend/internal/transport/http/response"
)

type paymentModule struct{ d Deps }

func (m *paymentModule) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/payments")

	// webhook 要验原始报文的签名，不走统一绑定，也不挂认证（Stripe 不带我们的令牌）
	g.POST("/webhook", m.handleWebhook)

	e := ez.New(g)
	m.mountCreatePaymentIntent(e)
}

// handleWebhook 签名校验交给 Stripe SDK；目前只关心 payment_intent.succeeded，
// 成功后把 metadata.userId 指向的用户标记为已订阅
func (m *paymentModule) handleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, resp.Fail("Webhook Error: cannot read body"))
		return
	}
	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), m.d.StripeWebhookSecret)
	if err != nil {
		m.d.Log.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, resp.Fail("Webhook Error: "+err.Error()))
		return
	}

	if event.Type == "payment_intent.succeeded" {
		var pi stripeapi.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			m.d.Log.Error("webhook payload decode failed", zap.Error(err))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if raw, ok := pi.Metadata["userId"]; ok {
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				m.d.Log.Warn("webhook metadata.userId is not numeric", zap.String("userId", raw))
			} else if err := m.d.Users.SetSubscribed(c.Request.Context(), userID); err != nil {
				// 订阅状态没翻过去只能靠 Stripe 的重投递，记日志别吞
				m.d.Log.Error("subscription activation failed", zap.Int64("user_id", userID), zap.Error(err))
			} else {
				m.d.Log.Info("subscription activated after payment", zap.Int64("user_id", userID))
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (m *paymentModule) mountCreatePaymentIntent(e ez.EZ) {
	type in struct {
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Metadata map[string]string `json:"metadata"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/create-payment-intent",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			if m.d.Stripe == nil {
				return ez.Result{}, ez.Internal("Payment service is not configured", nil)
			}
			if in.Amount <= 0 {
				return ez.Result{}, ez.BadRequest("Amount is required")
			}
			currency := in.Currency
			if currency == "" {
				currency = "inr"
			}
			params := &stripeapi.PaymentIntentParams{
				// Stripe 要最小货币单位（paise）
				Amount:   stripeapi.Int64(int64(math.Round(in.Amount * 100))),
				Currency: stripeapi.String(currency),
			}
			for k, v := range in.Metadata {
				params.AddMetadata(k, v)
			}
			pi, err := m.d.Stripe.PaymentIntents.New(params)
			if err != nil {
				return ez.Result{}, ez.Internal("Payment intent creation failed", err)
			}
			return ez.OK("Payment intent created", resp.Body{"clientSecret": pi.ClientSecret}), nil
		},
	})
}
