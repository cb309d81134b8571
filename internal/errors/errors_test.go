package errors

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("buy: %w", NewValidationError("quantity", 0, "quantity must be positive"))

	assert.True(t, Is(err, ErrInputValidation))
	assert.False(t, Is(err, ErrHoldingNotFound))

	var ve *ValidationError
	if assert.True(t, As(err, &ve)) {
		assert.Equal(t, "quantity", ve.Field)
	}
}

func TestParseErrorUnwraps(t *testing.T) {
	_, cause := strconv.ParseFloat("abc", 64)
	err := NewParseError(5, "price", "abc", cause)

	assert.True(t, errors.Is(err, strconv.ErrSyntax))
	assert.Contains(t, err.Error(), "line 5")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "context"))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
	assert.ErrorIs(t, Wrapf(ErrHoldingNotFound, "selling %s", "IBM"), ErrHoldingNotFound)
}
