package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	notFound := ToDomainError(fmt.Errorf("load: %w", pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, notFound.HTTPStatus)

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)

	wrapped := fmt.Errorf("wrapped: %w", NewTooManyRequests("slow down"))
	assert.Equal(t, http.StatusTooManyRequests, ToDomainError(wrapped).StatusCode())
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("refresh: %w", NewBadRequest("MISSING_REFRESH_TOKEN", "refresh_token is required"))
	assert.True(t, IsCode(err, "MISSING_REFRESH_TOKEN"))
	assert.False(t, IsCode(err, "NOT_FOUND"))
	assert.False(t, IsCode(errors.New("plain"), "NOT_FOUND"))
}
