package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorClassification(t *testing.T) {
	cause := errors.New("boom")

	cfgErr := ConfigError("api key is not configured", nil)
	extErr := fmt.Errorf("extract: %w", ExtractionError("invalid reply", cause))
	dbErr := PersistenceError("save batch", cause)

	assert.True(t, IsConfigError(cfgErr))
	assert.False(t, IsExtractionError(cfgErr))

	assert.True(t, IsExtractionError(extErr))
	assert.False(t, IsConfigError(extErr))
	assert.ErrorIs(t, extErr, cause)

	assert.True(t, IsPersistenceError(dbErr))
	assert.False(t, IsPersistenceError(cause))

	assert.Equal(t, "[config] api key is not configured", cfgErr.Error())
	assert.Equal(t, "[persistence] save batch: boom", dbErr.Error())
}
