package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskdesk/internal/database"
)

func TestNewWithOptions_RejectsBadInput(t *testing.T) {
	ctx := context.Background()

	_, err := database.New(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database URL is required")

	_, err = database.NewWithOptions(ctx, "postgres://localhost/taskdesk", database.PoolOptions{MaxConns: 2, MinConns: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds max conns")

	_, err = database.New(ctx, "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database URL")
}

func TestNewRedis_EmptyURLDisablesClient(t *testing.T) {
	client, err := database.NewRedis(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := database.NewRedis(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}
