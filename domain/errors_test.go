package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	wrapped := WrapError(ErrCodeModelMissing, "model tickets not present", errors.New("SQLSTATE 42P01"))
	assert.True(t, errors.Is(wrapped, ErrModelMissing))
	assert.False(t, errors.Is(wrapped, ErrUserNotFound))
}

func TestErrorIsSurvivesFurtherWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create ticket: %w", ErrModelMissing)
	assert.True(t, errors.Is(wrapped, ErrModelMissing))
	assert.True(t, IsDomainError(wrapped, ErrCodeModelMissing))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := WrapError(ErrCodeInternal, "query failed", errors.New("connection reset"))
	assert.Contains(t, err.Error(), "query failed")
	assert.Contains(t, err.Error(), "connection reset")

	bare := NewError(ErrCodeInvalid, "invalid payload")
	assert.Equal(t, "invalid payload", bare.Error())
}

func TestIsDomainErrorOnForeignError(t *testing.T) {
	assert.False(t, IsDomainError(errors.New("plain"), ErrCodeInternal))
	assert.False(t, IsDomainError(nil, ErrCodeInternal))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(ErrCodeInternal, "wrapped", cause)
	assert.True(t, errors.Is(err, cause))
}
