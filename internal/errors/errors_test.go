package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DrTomLLC/StoryStream/internal/errors"
)

func TestErrorIs(t *testing.T) {
	err := errors.NotFound("book not found")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.False(t, errors.Is(err, errors.ErrConflict))
}

func TestErrorHTTPStatus(t *testing.T) {
	cases := map[*errors.Error]int{
		errors.NotFound("x"):      404,
		errors.AlreadyExists("x"): 409,
		errors.Conflict("x"):      409,
		errors.Unsupported("x"):   400,
		errors.Transient("x"):     503,
		errors.Permanent("x"):     502,
		errors.Internal("x"):      500,
	}
	for err, status := range cases {
		assert.Equal(t, status, err.HTTPStatus(), err.Code)
	}
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, errors.Transient("disk full, try later").Retryable())
	assert.False(t, errors.Permanent("bad request").Retryable())
}

func TestErrorWrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	wrapped := errors.Wrap(cause, errors.CodeTransient, "download failed")
	assert.ErrorIs(t, wrapped, errors.ErrTransient)
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "connection reset")
}

func TestErrorWithDetails(t *testing.T) {
	err := errors.Validation("bad speed").WithDetails(map[string]any{"speed": 5.0})
	assert.NotNil(t, err.Details)
}
