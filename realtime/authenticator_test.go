package realtime

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestAuthenticator_IssueVerifyRoundTrip(t *testing.T) {
	auth := NewAuthenticator("super-secret")
	token, err := auth.Issue(Identity{UserID: "user-1", Role: "Mentor", DisplayName: "Ada"}, time.Hour)
	assert.NoError(t, err)

	identity, err := auth.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "Mentor", identity.Role)
	assert.Equal(t, "Ada", identity.DisplayName)
}

func TestAuthenticator_VerifyEmptyToken(t *testing.T) {
	auth := NewAuthenticator("super-secret")
	_, err := auth.Verify("")
	assert.Error(t, err)
}

func TestAuthenticator_VerifyGarbageToken(t *testing.T) {
	auth := NewAuthenticator("super-secret")
	_, err := auth.Verify("not-a-jwt")
	assert.Error(t, err)
}

func TestAuthenticator_VerifyWrongSecret(t *testing.T) {
	issuer := NewAuthenticator("secret-a")
	verifier := NewAuthenticator("secret-b")

	token, err := issuer.Issue(Identity{UserID: "user-1"}, time.Hour)
	assert.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestAuthenticator_VerifyExpiredToken(t *testing.T) {
	auth := NewAuthenticator("super-secret")
	token, err := auth.Issue(Identity{UserID: "user-1"}, -time.Minute)
	assert.NoError(t, err)

	_, err = auth.Verify(token)
	assert.Error(t, err)
}

func TestAuthenticator_VerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	auth := NewAuthenticator("super-secret")

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":       "user-1",
		"userType": "Mentor",
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = auth.Verify(token)
	assert.Error(t, err)
}

func TestAuthenticator_VerifyRejectsMissingSubject(t *testing.T) {
	auth := NewAuthenticator("super-secret")
	token, err := auth.Issue(Identity{UserID: ""}, time.Hour)
	assert.NoError(t, err)

	_, err = auth.Verify(token)
	assert.Error(t, err)
}
