package bridge

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// identityClaims carries the user identifier the collaborator embeds in its
// bearer tokens.
type identityClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// UserIDFromToken extracts the userId claim from a bearer token without
// verifying the signature. Verification is the backend's job; the agent only
// needs the identity to address answer requests.
func UserIDFromToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("no auth token")
	}

	claims := &identityClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse auth token: %w", err)
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return "", fmt.Errorf("auth token carries no user identity")
	}
	return userID, nil
}
