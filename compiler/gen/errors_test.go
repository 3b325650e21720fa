package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("Workers", -1, "must be positive")
	assert.Equal(t, `gen: config error for "Workers" (value: -1): must be positive`, err.Error())
	assert.Equal(t, `gen: config error for "Logger": nil`, NewConfigError("Logger", nil, "nil").Error())
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, IsConfigError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, IsConfigError(errors.New("other")))
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("permission denied")
	err := &GenerationError{Package: "models", File: "models/sqlxplus_gen.go", Cause: cause}
	assert.Equal(t, "gen: generation error in package models (file: models/sqlxplus_gen.go): permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrGenerationFailed)
	assert.True(t, IsGenerationError(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, "gen: generation error", (&GenerationError{}).Error())
}
