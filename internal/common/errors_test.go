package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	err := MissingFieldsError([]string{"title", "batch"})

	assert.True(t, errors.Is(err, ErrorValidation))
	assert.Equal(t, "missing required fields: title, batch", err.Error())
	assert.Equal(t, []string{"title", "batch"}, err.Fields)
}

func TestValidationError_SurvivesWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create note: %w", NewValidationError("bad file", "file"))

	var ve *ValidationError
	assert.True(t, errors.As(wrapped, &ve))
	assert.Equal(t, []string{"file"}, ve.Fields)
	assert.True(t, errors.Is(wrapped, ErrorValidation))
	assert.False(t, errors.Is(wrapped, ErrorNotFound))
}
