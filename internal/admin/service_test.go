package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/VelocityMotors/VelocityMotors/internal/common/apperr"
	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
)

type fakeAccounts struct {
	accounts map[string]*Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{accounts: map[string]*Account{}}
}

func (f *fakeAccounts) Create(ctx context.Context, a *Account) error {
	f.accounts[a.Username] = a
	return nil
}

func (f *fakeAccounts) FindByUsername(ctx context.Context, username string) (*Account, error) {
	a, ok := f.accounts[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) TouchLogin(ctx context.Context, a *Account) error { return nil }

func (f *fakeAccounts) Count(ctx context.Context) (int64, error) {
	return int64(len(f.accounts)), nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:           true,
		JWTSecret:         "test-secret",
		Issuer:            "velocitymotors",
		Audience:          "velocitymotors-admin",
		TokenTTLMinutes:   60,
		BootstrapUsername: "admin",
		BootstrapPassword: "s3cret",
	}
}

func TestSeedDefaultAndLogin(t *testing.T) {
	store := newFakeAccounts()
	svc := NewService(store, testAuthConfig())

	if err := svc.SeedDefault(context.Background()); err != nil {
		t.Fatalf("SeedDefault: %v", err)
	}
	if _, ok := store.accounts["admin"]; !ok {
		t.Fatal("expected bootstrap account seeded")
	}

	// 二次种子不应重复创建
	if err := svc.SeedDefault(context.Background()); err != nil {
		t.Fatalf("second SeedDefault: %v", err)
	}
	if len(store.accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(store.accounts))
	}

	res, err := svc.Login(context.Background(), "admin", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected non-empty token")
	}
	if res.ExpiresAt.IsZero() {
		t.Fatal("expected expiry set")
	}
}

func TestLoginBadCredentials(t *testing.T) {
	store := newFakeAccounts()
	svc := NewService(store, testAuthConfig())
	if err := svc.SeedDefault(context.Background()); err != nil {
		t.Fatalf("SeedDefault: %v", err)
	}

	if _, err := svc.Login(context.Background(), "admin", "wrong"); !errors.Is(err, apperr.ErrAuth) {
		t.Fatalf("expected ErrAuth for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "s3cret"); !errors.Is(err, apperr.ErrAuth) {
		t.Fatalf("expected ErrAuth for unknown user, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty credentials, got %v", err)
	}
}
