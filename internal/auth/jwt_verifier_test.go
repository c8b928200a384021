package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"log/slog"
	"testing"
	"time"

	"collaboratex/internal/domain"
	"collaboratex/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func newTestVerifier(t *testing.T) (*SupabaseJWTVerifier, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	kf := func(*jwt.Token) (interface{}, error) { return &key.PublicKey, nil }
	return NewJWTVerifierWithKeyfunc(kf, slog.New(slog.DiscardHandler)), key
}

func signClaims(t *testing.T, key *ecdsa.PrivateKey, sub, role string, exp time.Time) string {
	t.Helper()
	claims := models.SupabaseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: "ada@example.com",
		Role:  role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodES256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestVerifyToken(t *testing.T) {
	v, key := newTestVerifier(t)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid authenticated token", signClaims(t, key, "user-1", "authenticated", future), false},
		{"anon role rejected", signClaims(t, key, "user-1", "anon", future), true},
		{"missing subject rejected", signClaims(t, key, "", "authenticated", future), true},
		{"expired token rejected", signClaims(t, key, "user-1", "authenticated", time.Now().Add(-time.Minute)), true},
		{"garbage rejected", "not-a-jwt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.VerifyToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if claims.Subject != "user-1" {
				t.Errorf("subject = %q, want user-1", claims.Subject)
			}
			if s := claims.Session(); s.Email != "ada@example.com" || s.ExpiresAt.IsZero() {
				t.Errorf("unexpected session view: %+v", s)
			}
		})
	}
}

func TestVerifyToken_RejectsHMAC(t *testing.T) {
	v, _ := newTestVerifier(t)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := v.VerifyToken(signed); err == nil {
		t.Error("expected HS256 token to be rejected")
	}
	if v.Expired(signed) {
		t.Error("HS256 token must not be reported as merely expired")
	}
}

func TestExpired(t *testing.T) {
	v, key := newTestVerifier(t)
	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"live token", signClaims(t, key, "user-1", "authenticated", time.Now().Add(time.Hour)), false},
		{"expired token", signClaims(t, key, "user-1", "authenticated", time.Now().Add(-time.Hour)), true},
		{"wrong signer", signClaims(t, other, "user-1", "authenticated", time.Now().Add(-time.Hour)), false},
		{"garbage", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Expired(tt.token); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}
