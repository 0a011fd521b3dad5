package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskdesk/internal/domain"
)

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService("", "taskdesk", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("secret", "taskdesk", 0)
	assert.Error(t, err)
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc, err := NewTokenService("secret", "taskdesk", time.Hour)
	require.NoError(t, err)

	token, issued, err := svc.Issue("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Equal(t, "taskdesk", claims.Issuer)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc, err := NewTokenService("secret", "taskdesk", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issuedAt }
	token, _, err := svc.Issue("user-1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenService("secret-a", "taskdesk", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("secret-b", "taskdesk", time.Hour)
	require.NoError(t, err)

	token, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	other, err := NewTokenService("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	svc, err := NewTokenService("secret", "taskdesk", time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue("user-1")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc, err := NewTokenService("secret", "taskdesk", time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "taskdesk",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("secret", "taskdesk", time.Hour)
	require.NoError(t, err)

	_, err = svc.Validate("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestClaims_Remaining(t *testing.T) {
	now := time.Now()
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))}}
	assert.InDelta(t, time.Minute.Seconds(), c.Remaining(now).Seconds(), 1)

	c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	assert.Zero(t, c.Remaining(now))

	assert.Zero(t, (&Claims{}).Remaining(now))
}
