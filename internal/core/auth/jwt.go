package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret 签名密钥未配置，属于部署配置错误而不是请求错误
	ErrNoSecret = errors.New("jwt: signing secret is not configured")
	// ErrExpired 令牌已过期（需要和"非法令牌"区分，对外报不同的 401 文案）
	ErrExpired = errors.New("jwt: token expired")
	// ErrInvalid 签名不对 / 结构不对 / 非 HS256
	ErrInvalid = errors.New("jwt: invalid token")
)

// Claims 登录令牌载荷：用户序号、邮箱、角色、角色推导出的面板权限集合。
// 令牌无状态，签发后服务端无法吊销，只能等 7 天过期。
type Claims struct {
	UserID          int64    `json:"userId"`
	Email           string   `json:"email"`
	UserType        string   `json:"user_type"`
	DashboardAccess []string `json:"dashboardAccess"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func (j *JWTer) Issue(userID int64, email, userType string, dashboards []string) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now()
	claims := Claims{
		UserID:          userID,
		Email:           email,
		UserType:        userType,
		DashboardAccess: dashboards,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	if len(j.Secret) == 0 {
		return nil, ErrNoSecret
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalid
}
