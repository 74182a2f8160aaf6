package auth

import (
	"testing"
	"time"

	"github.com/VelocityMotors/VelocityMotors/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "velocitymotors",
		Audience:  "velocitymotors-admin",
	}

	token, exp, err := GenerateAccessToken(cfg, "a-1", []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "a-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "admin" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "secret-a", Issuer: "velocitymotors"}
	token, _, err := GenerateAccessToken(cfg, "a-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "secret-b", Issuer: "velocitymotors"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected parse with wrong secret to fail")
	}
}

func TestBearerToken(t *testing.T) {
	if got := BearerToken("Bearer abc.def"); got != "abc.def" {
		t.Fatalf("unexpected token: %s", got)
	}
	if got := BearerToken("  bearer   xyz  "); got != "xyz" {
		t.Fatalf("unexpected token: %s", got)
	}
	if got := BearerToken("raw-token"); got != "raw-token" {
		t.Fatalf("unexpected token: %s", got)
	}
}
