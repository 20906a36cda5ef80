package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/rattapoomjame/Sort/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "sort-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAdminToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	signed, err := MintAdminToken(cfg, now, AdminTokenPayload{Username: "admin"})
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}

	claims, err := ParseAdminToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAdminToken returned error: %v", err)
	}
	if claims.Username != "admin" {
		t.Fatalf("unexpected username %q", claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Fatalf("unexpected role %q", claims.Role)
	}
	if claims.ID == "" {
		t.Fatal("expected a generated jti")
	}
}

func TestParseAdminToken_WrongSecret(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: "admin"})
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}

	bad := cfg
	bad.Secret = "other-secret"
	if _, err := ParseAdminToken(bad, signed); err == nil {
		t.Fatal("expected signature mismatch to fail")
	}
}

func TestParseAdminToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	signed, err := MintAdminToken(cfg, time.Now().Add(-time.Hour), AdminTokenPayload{Username: "admin"})
	if err != nil {
		t.Fatalf("MintAdminToken returned error: %v", err)
	}

	if _, err := ParseAdminToken(cfg, signed); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expiry error, got %v", err)
	}
}

func TestMintAdminToken_Validation(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: "  "}); err == nil {
		t.Fatal("expected blank username to be rejected")
	}

	cfg.Secret = ""
	if _, err := MintAdminToken(cfg, time.Now(), AdminTokenPayload{Username: "admin"}); err == nil {
		t.Fatal("expected missing secret to be rejected")
	}
}
