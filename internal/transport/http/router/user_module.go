package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	"localmart-backend/internal/core/database"
	"localmart-backend/internal/feature/user"
	"localmart-backend/internal/transport/http/ez"
	mdw "localmart-backend/internal/transport/http/middleware"
	resp "localmart-backend/internal/transport/http/response"
	"localmart-backend/pkg/utils"
)

// 注册即开始的试用期
const trialDays = 30

// 重置链接有效期
const resetTokenTTL = time.Hour

type userModule struct{ d Deps }

// 认证模块最先挂
func (m *userModule) Priority() int { return 10 }

func (m *userModule) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/users")
	pub := ez.New(g)

	m.mountRegister(pub)
	m.mountLogin(pub)
	m.mountRequestPasswordReset(pub)
	m.mountResetPassword(pub)

	authed := g.Group("")
	authed.Use(mdw.Authenticate(m.d.JWT, m.d.Users, m.d.Log))
	priv := ez.New(authed)

	m.mountProfile(priv)
	m.mountLogout(priv)
	m.mountUpdateProfile(priv)
	m.mountGetUserByID(priv)
	m.mountCheckDashboardAccess(priv)
}

func (m *userModule) mountRegister(e ez.EZ) {
	type in struct {
		Fullname        string `json:"fullname" binding:"required"`
		Phone           string `json:"phone"`
		Email           string `json:"email" binding:"required,email"`
		City            string `json:"city"`
		UserType        string `json:"user_type"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			if in.Password != in.ConfirmPassword {
				return ez.Result{}, ez.BadRequest("Passwords do not match")
			}
			email := strings.TrimSpace(strings.ToLower(in.Email))

			existing, err := m.d.Users.FindByEmail(c.Request.Context(), email)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if existing != nil {
				return ez.Result{}, ez.Conflict("User with this email already exists")
			}

			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}

			trialEnd := time.Now().Add(trialDays * 24 * time.Hour)
			u := &user.User{
				Fullname:     strings.TrimSpace(in.Fullname),
				Phone:        in.Phone,
				Email:        email,
				City:         in.City,
				UserType:     normalizeUserType(in.UserType),
				PasswordHash: hash,
				TrialEnd:     &trialEnd,
			}
			if err := m.d.Users.Create(c.Request.Context(), u); err != nil {
				if database.IsDupKey(err) {
					// 序号分配竞争的输家
					return ez.Result{}, ez.Conflict("User with this ID already exists, please retry")
				}
				return ez.Result{}, ez.Internal("Internal server error", err)
			}

			dashboards := auth.DashboardsFor(u.UserType)
			token, err := m.d.JWT.Issue(u.ID, u.Email, u.UserType, dashboards)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.Created("User registered successfully", resp.Body{
				"token":           token,
				"user":            u,
				"dashboardAccess": dashboards,
			}), nil
		},
	})
}

func (m *userModule) mountLogin(e ez.EZ) {
	type in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/login-user",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			email := strings.TrimSpace(strings.ToLower(in.Email))
			u, err := m.d.Users.FindByEmail(c.Request.Context(), email)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if u == nil {
				return ez.Result{}, ez.NotFound("User not found")
			}
			if !auth.CheckPassword(in.Password, u.PasswordHash) {
				return ez.Result{}, ez.Unauthorized("Invalid credentials")
			}

			dashboards := auth.DashboardsFor(u.UserType)
			token, err := m.d.JWT.Issue(u.ID, u.Email, u.UserType, dashboards)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Login successful", resp.Body{
				"token":           token,
				"user":            u,
				"dashboardAccess": dashboards,
			}), nil
		},
	})
}

func (m *userModule) mountLogout(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			// 令牌无状态，服务端没有吊销清单；真正的"登出"发生在客户端
			return ez.OK("Logout successful. Please remove the token from client storage.", nil), nil
		},
	})
}

func (m *userModule) mountProfile(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/profile",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			u := mdw.UserFrom(c)
			claims := mdw.ClaimsFrom(c)
			return ez.OK("User profile retrieved successfully", resp.Body{
				"user":            u,
				"dashboardAccess": claims.DashboardAccess,
			}), nil
		},
	})
}

func (m *userModule) mountUpdateProfile(e ez.EZ) {
	type in struct {
		Fullname *string `json:"fullname"`
		Phone    *string `json:"phone"`
		City     *string `json:"city"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/update-profile",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			fields := map[string]any{}
			if in.Fullname != nil {
				fields["fullname"] = strings.TrimSpace(*in.Fullname)
			}
			if in.Phone != nil {
				fields["phone"] = *in.Phone
			}
			if in.City != nil {
				fields["city"] = *in.City
			}
			if len(fields) == 0 {
				return ez.Result{}, ez.BadRequest("At least one field is required to update")
			}

			u := mdw.UserFrom(c)
			updated, err := m.d.Users.UpdateProfile(c.Request.Context(), u.ID, fields)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Profile updated successfully", resp.Body{"user": updated}), nil
		},
	})
}

func (m *userModule) mountGetUserByID(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/get-user-by-id/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				return ez.Result{}, ez.BadRequest("Invalid user ID format")
			}
			u, err := m.d.Users.FindByID(c.Request.Context(), id)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if u == nil {
				return ez.Result{}, ez.NotFound("User not found")
			}
			return ez.OK("User retrieved successfully", resp.Body{"user": u}), nil
		},
	})
}

func (m *userModule) mountCheckDashboardAccess(e ez.EZ) {
	ez.RegisterAction[struct{}](e, m.d.DB, ez.Action[struct{}]{
		Method: http.MethodGet,
		Path:   "/check-dashboard-access/:dashboard",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, tx *gorm.DB, _ *struct{}) (ez.Result, error) {
			claims := mdw.ClaimsFrom(c)
			dashboard := c.Param("dashboard")
			return ez.OK("Dashboard access checked", resp.Body{
				"hasAccess":          auth.HasDashboard(claims.DashboardAccess, dashboard),
				"userType":           claims.UserType,
				"allDashboardAccess": claims.DashboardAccess,
			}), nil
		},
	})
}

func (m *userModule) mountRequestPasswordReset(e ez.EZ) {
	type in struct {
		Email string `json:"email" binding:"required,email"`
	}
	// 无论邮箱存不存在都回同一句话，不给枚举邮箱的机会
	const sent = "If an account with that email exists, a reset link has been sent"

	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/request-password-reset",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			email := strings.TrimSpace(strings.ToLower(in.Email))
			u, err := m.d.Users.FindByEmail(c.Request.Context(), email)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if u == nil {
				return ez.OK(sent, nil), nil
			}

			token := uuid.NewString()
			expiry := time.Now().Add(resetTokenTTL)
			if err := m.d.Users.SetResetToken(c.Request.Context(), u.ID, token, expiry); err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}

			resetURL := utils.ToFullURL(m.d.BaseURL, "/reset-password/"+token)
			if m.d.Mailer == nil {
				m.d.Log.Warn("mailer not configured, reset link not delivered",
					zap.Int64("user_id", u.ID))
			} else if err := m.d.Mailer.SendPasswordReset(u.Email, resetURL); err != nil {
				// 投递失败不暴露给调用方，令牌已落库，重发即可
				m.d.Log.Error("reset mail send failed", zap.Int64("user_id", u.ID), zap.Error(err))
			}
			return ez.OK(sent, nil), nil
		},
	})
}

func (m *userModule) mountResetPassword(e ez.EZ) {
	type in struct {
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
	}
	ez.RegisterAction[in](e, m.d.DB, ez.Action[in]{
		Method: http.MethodPost,
		Path:   "/reset-password/:token",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, tx *gorm.DB, in *in) (ez.Result, error) {
			if in.Password != in.ConfirmPassword {
				return ez.Result{}, ez.BadRequest("Passwords do not match")
			}
			u, err := m.d.Users.FindByResetToken(c.Request.Context(), c.Param("token"), time.Now())
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if u == nil {
				return ez.Result{}, ez.BadRequest("Invalid or expired reset token")
			}
			hash, err := auth.HashPassword(in.Password)
			if err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			if err := m.d.Users.ResetPassword(c.Request.Context(), u.ID, hash); err != nil {
				return ez.Result{}, ez.Internal("Internal server error", err)
			}
			return ez.OK("Password reset successful", nil), nil
		},
	})
}

func normalizeUserType(t string) string {
	switch strings.TrimSpace(strings.ToLower(t)) {
	case auth.RoleDealer:
		return auth.RoleDealer
	case auth.RoleAdmin:
		return auth.RoleAdmin
	default:
		return auth.RoleCustomer
	}
}
