package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimsFromToken decodes the claims of a JWT without verifying its
// signature. The client never validates tokens, it only inspects them to
// avoid sending requests the server would reject anyway.
func ClaimsFromToken(tokenString string) (jwt.MapClaims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	return claims, nil
}

// TokenExpiry returns the exp claim of the token.
func TokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ClaimsFromToken(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry: %w", err)
	}
	return exp.Time, nil
}

// TokenExpired reports whether the token's exp claim is in the past. A token
// that cannot be parsed counts as expired.
func TokenExpired(tokenString string) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return true
	}
	return time.Now().After(exp)
}

// TokenExpiringWithin reports whether the token expires inside the given
// window, for proactive refresh.
func TokenExpiringWithin(tokenString string, window time.Duration) bool {
	exp, err := TokenExpiry(tokenString)
	if err != nil {
		return true
	}
	return time.Now().Add(window).After(exp)
}

// GenerateJWTToken issues a short-lived HS256 access token. Used by the
// local development stub server only.
func GenerateJWTToken(secret, userID, username string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userID":   userID,
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWTToken verifies an HS256 token and returns its claims. Used by
// the local development stub server only.
func ValidateJWTToken(secret, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
