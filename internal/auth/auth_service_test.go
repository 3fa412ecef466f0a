package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"
)

func newTestService(t *testing.T, accessTTL, refreshTTL time.Duration) *AuthService {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	service, err := NewAuthService(privPEM, pubPEM, accessTTL, refreshTTL)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return service
}

func TestTokenPairRoundTrip(t *testing.T) {
	service := newTestService(t, 15*time.Minute, 24*time.Hour)

	pair, err := service.GenerateTokenPair("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}

	access, err := service.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if access.UserID != "user-1" || access.Email != "a@example.com" {
		t.Errorf("unexpected access claims: %+v", access)
	}
	if access.TokenType != "access" {
		t.Errorf("expected access token type, got %q", access.TokenType)
	}

	refresh, err := service.ValidateToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if refresh.TokenType != "refresh" {
		t.Errorf("expected refresh token type, got %q", refresh.TokenType)
	}
	if refresh.ID == "" {
		t.Error("refresh token must carry a jti for blacklisting")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	service := newTestService(t, -time.Minute, 24*time.Hour)

	pair, err := service.GenerateTokenPair("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := service.ValidateToken(pair.AccessToken); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestService(t, 15*time.Minute, 24*time.Hour)
	verifier := newTestService(t, 15*time.Minute, 24*time.Hour)

	pair, err := issuer.GenerateTokenPair("user-1", "a@example.com")
	if err != nil {
		t.Fatalf("generate token pair: %v", err)
	}
	if _, err := verifier.ValidateToken(pair.AccessToken); err == nil {
		t.Fatal("expected token signed by another key to be rejected")
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := newTestService(t, 15*time.Minute, 24*time.Hour)

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := service.ValidateToken(token); err == nil {
			t.Errorf("expected %q to be rejected", token)
		}
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !CheckPasswordHash("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}
