package apperror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Status(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want int
	}{
		{"validation", Validation("x"), 400},
		{"unauthorized", Unauthorized("x"), 401},
		{"forbidden", Forbidden("x"), 403},
		{"not found", NotFound("x"), 404},
		{"conflict", Conflict("x"), 409},
		{"internal", Internal("x", errors.New("boom")), 500},
		{"deadline", Internal("x", context.DeadlineExceeded), 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Status())
		})
	}
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, Conflict("x").Retryable())
	assert.True(t, Internal("x", fmt.Errorf("wrap: %w", context.DeadlineExceeded)).Retryable())
	assert.False(t, Validation("x").Retryable())
	assert.False(t, Internal("x", errors.New("boom")).Retryable())
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", NotFound("Kayıt bulunamadı"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindNotFound, appErr.Kind)
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestError_Error(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("Sunucu hatası", cause)

	assert.Equal(t, "Sunucu hatası: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "geçersiz", Validation("geçersiz").Error())
}
