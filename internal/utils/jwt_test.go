package utils

import (
	"testing"
	"time"
)

func TestTokenLifecycle(t *testing.T) {
	token, err := GenerateJWTToken("secret", "doc-1", "Dr. Test", 10*time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateJWTToken("secret", token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims["userID"] != "doc-1" || claims["username"] != "Dr. Test" {
		t.Errorf("claims = %v", claims)
	}

	if _, err := ValidateJWTToken("wrong-secret", token); err == nil {
		t.Error("wrong secret should fail validation")
	}

	if TokenExpired(token) {
		t.Error("fresh token reported expired")
	}
	if TokenExpiringWithin(token, time.Minute) {
		t.Error("token with 10m left is not expiring within 1m")
	}
	if !TokenExpiringWithin(token, time.Hour) {
		t.Error("token with 10m left is expiring within 1h")
	}
}

func TestExpiredToken(t *testing.T) {
	token, err := GenerateJWTToken("secret", "doc-1", "Dr. Test", -time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !TokenExpired(token) {
		t.Error("past-dated token should report expired")
	}
	if _, err := ValidateJWTToken("secret", token); err == nil {
		t.Error("expired token should fail validation")
	}
}

func TestUnparseableTokenCountsAsExpired(t *testing.T) {
	if !TokenExpired("garbage") {
		t.Error("garbage should count as expired")
	}
	if _, err := ClaimsFromToken("garbage"); err == nil {
		t.Error("expected parse error")
	}
}

func TestClaimsFromTokenSkipsVerification(t *testing.T) {
	token, err := GenerateJWTToken("some-secret", "doc-1", "Dr. Test", time.Minute)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// No secret needed for inspection.
	claims, err := ClaimsFromToken(token)
	if err != nil {
		t.Fatalf("claims: %v", err)
	}
	if claims["userID"] != "doc-1" {
		t.Errorf("claims = %v", claims)
	}
}
