package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)

	token, exp, err := tm.GenerateToken("ops@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if time.Until(exp) <= 0 || time.Until(exp) > 5*time.Minute {
		t.Errorf("unexpected expiry %v", exp)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() failed: %v", err)
	}
	if claims.Subject != "ops@example.com" || claims.Role != RoleOperator || claims.ID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", 5).GenerateToken("ops@example.com")
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}
	if _, err := NewTokenManager("two", 5).ParseToken(token); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword() failed: %v", err)
	}
	if err := ComparePassword(hash, "hunter2"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := ComparePassword(hash, "hunter3"); err == nil {
		t.Error("expected mismatch")
	}
}
