package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePolicy(t *testing.T) {
	assert.NoError(t, ValidatePolicy("Abc@12"))
	assert.NoError(t, ValidatePolicy("Troca#2026"))

	// Too short.
	assert.ErrorIs(t, ValidatePolicy("Ab@1"), ErrWeakPassword)
	// No uppercase.
	assert.ErrorIs(t, ValidatePolicy("abc@123"), ErrWeakPassword)
	// No symbol.
	assert.ErrorIs(t, ValidatePolicy("Abc1234"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePolicy(""), ErrWeakPassword)
}

func TestHashEnforcesPolicy(t *testing.T) {
	h := NewBcryptHasher(0)

	_, err := h.Hash("fraca")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hashed, err := h.Hash("Forte@123")
	require.NoError(t, err)
	assert.NotEqual(t, "Forte@123", hashed)

	assert.NoError(t, h.Compare(hashed, "Forte@123"))
	assert.Error(t, h.Compare(hashed, "Errada@123"))
}
