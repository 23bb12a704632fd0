package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryCodeAndMessage(t *testing.T) {
	cause := errors.New("boom")

	cases := []struct {
		err     *AppError
		code    ErrorCode
		message string
	}{
		{NotFound("person", cause), ErrNotFound, "person not found"},
		{Validation("bad input", cause), ErrValidation, "bad input"},
		{Auth("invalid credentials", nil), ErrAuth, "invalid credentials"},
		{Forbidden("conta_bloqueada", nil), ErrForbidden, "conta_bloqueada"},
		{Conflict("unit already exists", cause), ErrConflict, "unit already exists"},
		{Storage(cause), ErrStorage, "storage error"},
		{Internal("failed to issue token", cause), ErrInternal, "failed to issue token"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.Code)
		assert.Equal(t, tc.message, tc.err.Message)
		assert.Equal(t, tc.code, CodeOf(tc.err))
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to send reset email", cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to send reset email")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOfWrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Storage(errors.New("timeout")))

	assert.Equal(t, ErrStorage, CodeOf(wrapped))
	assert.True(t, Is(wrapped, ErrStorage))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	assert.Equal(t, ErrInternal, CodeOf(errors.New("plain")))
}
