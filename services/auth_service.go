package services

import (
	"context"
	"fmt"

	"chispa_server/models"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService validates bearer credentials issued by the external auth
// system and resolves them to a profile. Token issuance is not this
// service's business; it only verifies the HS256 signature and reads the
// account id out of the claims.
type AuthService struct {
	Secret   []byte
	Profiles *ProfileService
}

// ValidateToken verifies the token and returns the account id it names.
func (as *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return as.Secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrUnauthorized
	}

	// Tokens carry the account id as "id"; fall back to the standard subject.
	if id, ok := claims["id"].(string); ok && id != "" {
		return id, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", ErrUnauthorized
}

// ProfileForToken validates the credential and resolves the owning profile.
// This is the handshake path for both REST and the realtime gateway.
func (as *AuthService) ProfileForToken(ctx context.Context, tokenString string) (*models.Profile, error) {
	userID, err := as.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	profile, err := as.Profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
