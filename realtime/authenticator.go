package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator verifies the signed credential presented at connection time
// and maps it to an Identity. Verification has no side effects: a failed
// credential never creates a registry entry.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator around the shared token secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Verify checks the token's signature and expiry and returns the decoded
// identity. The returned error rejects the handshake before any connection
// state exists.
func (a *Authenticator) Verify(token string) (Identity, error) {
	if token == "" {
		return Identity{}, errors.New("missing credential")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("invalid credential: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, errors.New("invalid credential claims")
	}

	userID, _ := claims["id"].(string)
	if userID == "" {
		return Identity{}, errors.New("credential is missing a user id")
	}
	role, _ := claims["userType"].(string)
	name, _ := claims["name"].(string)

	return Identity{UserID: userID, Role: role, DisplayName: name}, nil
}

// Issue signs a credential for the given identity, valid for ttl
func (a *Authenticator) Issue(identity Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":       identity.UserID,
		"userType": identity.Role,
		"name":     identity.DisplayName,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
