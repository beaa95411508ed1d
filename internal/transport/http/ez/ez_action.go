package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"localmart-backend/internal/core/auth"
	mdw "localmart-backend/internal/transport/http/middleware"
	resp "localmart-backend/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart / x-www-form-urlencoded
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// AErr 统一错误对象：Status 就是要回的 HTTP 状态码
type AErr struct {
	Status int
	Msg    string
	Err    error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func BadRequest(msg string) error   { return &AErr{Status: http.StatusBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Status: http.StatusUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Status: http.StatusForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Status: http.StatusNotFound, Msg: msg} }
func Conflict(msg string) error     { return &AErr{Status: http.StatusConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Status: http.StatusInternalServerError, Msg: msg, Err: err}
}

// Result 成功返回：状态码（缺省 200）+ 文案 + 平铺进信封的负载
type Result struct {
	Status  int
	Message string
	Payload resp.Body
}

func Created(message string, payload resp.Body) Result {
	return Result{Status: http.StatusCreated, Message: message, Payload: payload}
}

func OK(message string, payload resp.Body) Result {
	return Result{Status: http.StatusOK, Message: message, Payload: payload}
}

// Action 一行注册的动作接口：I 为入参结构
type Action[I any] struct {
	Method    string // "GET" | "POST" | "PUT" | "DELETE"
	Path      string // 例："/register"、"/update-product/:id"
	Binder    Binder
	Dashboard string // 非空时要求令牌有该面板权限（第二道门）
	UseTx     bool   // 是否包事务（gorm.Transaction）
	Handler   func(c *gin.Context, tx *gorm.DB, in *I) (Result, error)
}

func RegisterAction[I any](e EZ, db *gorm.DB, a Action[I]) {
	h := func(c *gin.Context) {
		// 1) 面板守卫（分组中间件已做认证；这里只查集合成员）
		if a.Dashboard != "" {
			claims := mdw.ClaimsFrom(c)
			if claims == nil || !auth.HasDashboard(claims.DashboardAccess, a.Dashboard) {
				c.JSON(http.StatusForbidden,
					resp.Fail("Access denied - "+a.Dashboard+" dashboard access required"))
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone
		}
		if bindErr != nil {
			c.JSON(http.StatusBadRequest, resp.Fail(bindErr.Error()))
			return
		}

		// 3) 执行（可选事务）
		run := func(tx *gorm.DB) (Result, error) { return a.Handler(c, tx, &in) }
		var out Result
		var err error
		if a.UseTx {
			err = db.WithContext(c).Transaction(func(tx *gorm.DB) error {
				o, e := run(tx)
				out = o
				return e
			})
		} else {
			out, err = run(db.WithContext(c))
		}

		// 4) 统一错误映射
		if err != nil {
			var ae *AErr
			if errors.As(err, &ae) {
				c.JSON(ae.Status, resp.Fail(ae.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, resp.Fail("Internal server error"))
			return
		}
		if out.Status == 0 {
			out.Status = http.StatusOK
		}
		c.JSON(out.Status, resp.OK(out.Message, out.Payload))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
