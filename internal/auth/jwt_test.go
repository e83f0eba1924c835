package auth

import (
	"testing"
	"time"
)

func TestMintAndParse(t *testing.T) {
	token, err := MintToken(42, "ops@example.com", "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}

	claims, err := ParseClaims(token, "secret")
	if err != nil {
		t.Fatalf("ParseClaims() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Email != "ops@example.com" {
		t.Errorf("email = %q, want %q", claims.Email, "ops@example.com")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := MintToken(1, "", "secret", time.Hour)
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}
	if _, err := ParseClaims(token, "other-secret"); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	token, err := MintToken(1, "", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}
	if _, err := ParseClaims(token, "secret"); err == nil {
		t.Error("expired token accepted")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ParseClaims("not-a-token", "secret"); err == nil {
		t.Error("malformed token accepted")
	}
}
