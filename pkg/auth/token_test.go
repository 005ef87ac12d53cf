package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "puntada-test",
		ExpirationMinutes: 15,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	userID := uuid.New()
	now := time.Now()

	signed, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: userID,
		Role:   enums.UserRoleCustomer,
		JTI:    "jti-123",
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", claims.Role)
	}
	if claims.ID != "jti-123" {
		t.Fatalf("expected jti-123, got %s", claims.ID)
	}
	if claims.IsAdmin() {
		t.Fatal("customer claims should not report admin")
	}
}

func TestMintAccessTokenValidatesInputs(t *testing.T) {
	t.Parallel()

	now := time.Now()
	payload := AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCustomer}

	cases := []struct {
		name string
		cfg  config.JWTConfig
		mut  func(*AccessTokenPayload)
	}{
		{name: "missing secret", cfg: config.JWTConfig{Issuer: "x", ExpirationMinutes: 5}},
		{name: "missing issuer", cfg: config.JWTConfig{Secret: "s", ExpirationMinutes: 5}},
		{name: "non-positive expiry", cfg: config.JWTConfig{Secret: "s", Issuer: "x"}},
		{
			name: "invalid role",
			cfg:  testJWTConfig(),
			mut:  func(p *AccessTokenPayload) { p.Role = enums.UserRole("vendedor") },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := payload
			if tc.mut != nil {
				tc.mut(&p)
			}
			if _, err := MintAccessToken(tc.cfg, now, p); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	signed, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	wrong := cfg
	wrong.Secret = "other-secret"
	if _, err := ParseAccessToken(wrong, signed); err == nil {
		t.Fatal("expected signature validation failure")
	}
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	past := time.Now().Add(-2 * time.Hour)
	signed, err := MintAccessToken(cfg, past, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
		JTI:    "stale-jti",
	})
	if err != nil {
		t.Fatalf("MintAccessToken returned error: %v", err)
	}

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to fail strict parse")
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, signed)
	if err != nil {
		t.Fatalf("ParseAccessTokenAllowExpired returned error: %v", err)
	}
	if claims.ID != "stale-jti" {
		t.Fatalf("expected stale-jti, got %s", claims.ID)
	}
}
