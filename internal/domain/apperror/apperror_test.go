package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByKind(t *testing.T) {
	err := NotFound("course")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)

	wrapped := fmt.Errorf("load: %w", err)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindWeakPassword, KindOf(ErrWeakPassword))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestFromKeepsCauseForInternal(t *testing.T) {
	cause := errors.New("connection reset")
	e := From(cause)
	require.NotNil(t, e)
	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestValidationDetails(t *testing.T) {
	e := Validation("invalid payload", map[string]string{"email": "is required"})
	assert.ErrorIs(t, e, ErrValidation)
	assert.Equal(t, map[string]string{"email": "is required"}, e.Details)
}
