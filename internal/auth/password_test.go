package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskdesk/internal/auth"
	"github.com/mtlprog/taskdesk/internal/domain"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.NoError(t, auth.VerifyPassword("s3cret!", hash))
	assert.ErrorIs(t, auth.VerifyPassword("wrong", hash), domain.ErrInvalidCredentials)
	assert.ErrorIs(t, auth.VerifyPassword("", hash), domain.ErrInvalidCredentials)
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = auth.HashPassword(strings.Repeat("x", 100))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
