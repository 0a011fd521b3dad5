package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskdesk/internal/domain"
	"github.com/mtlprog/taskdesk/internal/service"
)

func TestParseDate(t *testing.T) {
	got, err := service.ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *got)

	got, err = service.ParseDate("2026-03-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)))

	got, err = service.ParseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = service.ParseDate("next tuesday")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.ErrorIs(t, err, domain.ErrInvalidDueDate)
}
