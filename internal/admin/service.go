package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/auth"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
	"github.com/google/uuid"
)

// AccountStore 账号存储接口（由 Repo 实现；测试用假实现）。
type AccountStore interface {
	Create(ctx context.Context, a *Account) error
	FindByUsername(ctx context.Context, username string) (*Account, error)
	TouchLogin(ctx context.Context, a *Account) error
	Count(ctx context.Context) (int64, error)
}

// Service 管理员账号与登录会话。
type Service struct {
	store AccountStore
	cfg   config.AuthConfig
}

func NewService(store AccountStore, cfg config.AuthConfig) *Service {
	return &Service{store: store, cfg: cfg}
}

// SeedDefault 首次启动时种入引导管理员账号。表非空则跳过。
func (s *Service) SeedDefault(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("service not initialized")
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admin accounts: %w", err)
	}
	if total > 0 {
		return nil
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return err
	}
	hash, err := HashPassword(s.cfg.BootstrapPassword, salt)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	return s.store.Create(ctx, &Account{
		ID:           uuid.NewString(),
		Username:     s.cfg.BootstrapUsername,
		PasswordHash: hash,
		PasswordSalt: salt,
		DisplayName:  "Administrator",
	})
}

// LoginResult 登录成功后的会话信息。
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

// Login 校验用户名密码，签发管理端访问 token。
// 凭证错误统一返回 ErrAuth，不区分用户不存在与密码错误。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperr.ErrValidation)
	}

	acc, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuth)
	}
	if !VerifyPassword(password, acc.PasswordSalt, acc.PasswordHash) {
		return nil, fmt.Errorf("invalid credentials: %w", apperr.ErrAuth)
	}

	token, expiresAt, err := auth.GenerateAccessToken(s.cfg, acc.ID, []string{"admin"}, s.cfg.TokenTTL())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := time.Now()
	acc.LastLoginAt = &now
	// 登录时间戳更新失败不阻断登录
	_ = s.store.TouchLogin(ctx, acc)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: acc}, nil
}
