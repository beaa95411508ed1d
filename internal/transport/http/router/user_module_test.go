package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/cache"
	"localmart-backend/internal/feature/product"
	"localmart-backend/internal/feature/shop"
	"localmart-backend/internal/feature/user"
	"localmart-backend/internal/repo"
	"localmart-backend/internal/transport/http/router"
)

const (
	testBaseURL       = "http://127.0.0.1:8080"
	testWebhookSecret = "whsec_test_secret"
)

func newTestAPI(t *testing.T) (*gin.Engine, *auth.JWTer, *gorm.DB) {
	return newTestEngine(t, nil)
}

func newTestEngine(t *testing.T, c *cache.Cache) (*gin.Engine, *auth.JWTer, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&user.User{}, &shop.Shop{}, &product.Product{}))

	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: 7 * 24 * time.Hour}
	r := router.NewAPIEngine(router.Deps{
		Log:      zap.NewNop(),
		DB:       db,
		JWT:      j,
		Users:    repo.NewUserRepo(db),
		Shops:    repo.NewShopRepo(db),
		Products: repo.NewProductRepo(db),
		Cache:    c,

		BaseURL:     testBaseURL,
		UploadsDir:  t.TempDir(),
		UploadMaxMB: 5,

		StripeWebhookSecret: testWebhookSecret,
	})
	return r, j, db
}

func postJSON(t *testing.T, r http.Handler, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func registerPayload(email, userType string) map[string]any {
	return map[string]any{
		"fullname":         "Test User",
		"phone":            "1234567890",
		"email":            email,
		"city":             "Pune",
		"user_type":        userType,
		"password":         "secret123",
		"confirm_password": "secret123",
	}
}

func TestRegister_DealerGetsDealerDashboard(t *testing.T) {
	t.Parallel()
	r, j, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("dealer@x.com", "dealer"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	m := decode(t, w)
	assert.Equal(t, true, m["success"])
	assert.Equal(t, "User registered successfully", m["message"])

	token, _ := m["token"].(string)
	require.NotEmpty(t, token)
	claims, err := j.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "dealer", claims.UserType)
	assert.ElementsMatch(t, []string{auth.DashboardCustomer, auth.DashboardDealer}, claims.DashboardAccess)

	u, ok := m["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), u["id"])
	assert.NotContains(t, u, "password_hash")
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	p := registerPayload("a@x.com", "customer")
	p["confirm_password"] = "different"
	w := postJSON(t, r, "/api/users/register", "", p)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords do not match", decode(t, w)["message"])

	w = postJSON(t, r, "/api/users/register", "", map[string]any{"email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("dup@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/users/register", "", registerPayload("dup@x.com", "customer"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", decode(t, w)["message"])
}

func TestLogin(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("login@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/users/login-user", "", map[string]any{
		"email": "login@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode(t, w)["message"])

	w = postJSON(t, r, "/api/users/login-user", "", map[string]any{
		"email": "nobody@x.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = postJSON(t, r, "/api/users/login-user", "", map[string]any{
		"email": "Login@X.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, "Login successful", m["message"])
	assert.NotEmpty(t, m["token"])
}

func TestCheckDashboardAccess(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("check@x.com", "dealer"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)

	w = getJSON(t, r, "/api/users/check-dashboard-access/admin", token)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	assert.Equal(t, false, m["hasAccess"])
	assert.Equal(t, "dealer", m["userType"])

	w = getJSON(t, r, "/api/users/check-dashboard-access/dealer", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["hasAccess"])

	w = getJSON(t, r, "/api/users/check-dashboard-access/dealer", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileAndUpdate(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("prof@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)
	token := decode(t, w)["token"].(string)

	w = getJSON(t, r, "/api/users/profile", token)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode(t, w)
	u := m["user"].(map[string]any)
	assert.Equal(t, "prof@x.com", u["email"])

	w = postJSON(t, r, "/api/users/update-profile", token, map[string]any{"city": "Mumbai"})
	require.Equal(t, http.StatusOK, w.Code)
	u = decode(t, w)["user"].(map[string]any)
	assert.Equal(t, "Mumbai", u["city"])

	w = postJSON(t, r, "/api/users/update-profile", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "At least one field is required to update", decode(t, w)["message"])
}

func TestShopCreate_RequiresDealerDashboard(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("cust@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)
	custToken := decode(t, w)["token"].(string)

	shopBody := map[string]any{
		"user_id":      1,
		"shop_name":    "My Shop",
		"shop_address": "12 Main St",
		"phone_no":     "999",
		"state":        "MH",
		"city":         "Pune",
		"area":         "Kothrud",
	}
	w = postJSON(t, r, "/api/shops/create-shop", custToken, shopBody)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(t, r, "/api/users/register", "", registerPayload("dealer2@x.com", "dealer"))
	require.Equal(t, http.StatusCreated, w.Code)
	dealerToken := decode(t, w)["token"].(string)

	shopBody["user_id"] = 2
	w = postJSON(t, r, "/api/shops/create-shop", dealerToken, shopBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(1), data["id"])
	assert.Equal(t, "My Shop", data["shop_name"])
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()
	r, _, _ := newTestAPI(t)

	w := postJSON(t, r, "/api/users/register", "", registerPayload("reset@x.com", "customer"))
	require.Equal(t, http.StatusCreated, w.Code)

	// same reply whether or not the email exists
	w = postJSON(t, r, "/api/users/request-password-reset", "", map[string]any{"email": "reset@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode(t, w)["message"]
	w = postJSON(t, r, "/api/users/request-password-reset", "", map[string]any{"email": "nobody@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, msg, decode(t, w)["message"])

	w = postJSON(t, r, "/api/users/reset-password/bad-token", "", map[string]any{
		"password": "newpass123", "confirm_password": "newpass123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", decode(t, w)["message"])
}
