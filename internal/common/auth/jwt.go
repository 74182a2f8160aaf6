package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateAccessToken 生成 HS256 JWT access token（管理端会话令牌）。
// 过期时间由服务端签发并校验，客户端只透传。
func GenerateAccessToken(cfg config.AuthConfig, subject string, roles []string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("subject is empty")
	}
	if cfg.JWTSecret == "" {
		return "", time.Time{}, fmt.Errorf("jwt_secret is empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := time.Now()
	expiresAt = now.Add(ttl)

	c := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			Audience:  audience(cfg.Audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := t.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAccessToken 校验并解析 access token：
// - 仅接受 HS256 签名
// - exp/nbf 按 jwt/v5 默认规则校验（留 30s 时钟漂移）
// - 可选校验 iss/aud
func ParseAccessToken(cfg config.AuthConfig, tokenStr string) (*Claims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, fmt.Errorf("token is empty")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is empty")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil || parsed == nil || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("invalid issuer")
	}
	if cfg.Audience != "" && !audienceContains(claims.Audience, cfg.Audience) {
		return nil, fmt.Errorf("invalid audience")
	}
	return claims, nil
}

// BearerToken 从 `Authorization: Bearer <token>` 头里取出 token。
func BearerToken(header string) string {
	token := strings.TrimSpace(header)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[len("bearer "):])
	}
	return token
}

func audience(aud string) jwt.ClaimStrings {
	if aud == "" {
		return nil
	}
	return jwt.ClaimStrings{aud}
}

func audienceContains(aud jwt.ClaimStrings, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" || len(aud) == 0 {
		return false
	}
	for _, v := range aud {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}
