package xerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError_MatchesSentinel(t *testing.T) {
	v := &ValidationError{}
	v.Add("leadSubStatus", "%q is not allowed for status %q", "Sold", "Active")
	v.Add("firstContactedDateTime", "must not be earlier than createdDateTime")

	err := fmt.Errorf("failed to replace lead: %w", v.OrNil())

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.False(t, errors.Is(err, ErrNotFound))
	require.Len(t, FieldsOf(err), 2)
	assert.Equal(t, "leadSubStatus", FieldsOf(err)[0].Field)
	assert.Contains(t, err.Error(), "firstContactedDateTime")
}

func TestValidationError_Cause(t *testing.T) {
	err := &ValidationError{Cause: ErrDuplicateEntry}
	err.Add("serialNumber", "already exists")

	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.True(t, errors.Is(err, ErrDuplicateEntry))
}

func TestValidationError_OrNil(t *testing.T) {
	var nilErr *ValidationError
	assert.NoError(t, nilErr.OrNil())
	assert.NoError(t, (&ValidationError{}).OrNil())
	assert.Error(t, Invalid("x", "bad").(*ValidationError).OrNil())
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	err := Wrap(ErrNotFound, "lead 010")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "lead 010: resource not found", err.Error())
}
