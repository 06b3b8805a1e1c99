package helper_util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vigil_errors "github.com/clearledger/vigil/api/errors"
)

func TestParseDateParam(t *testing.T) {
	parsed, err := ParseDateParam("2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), *parsed)

	parsed, err = ParseDateParam("")
	assert.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = ParseDateParam("14-03-2026")
	assert.ErrorIs(t, err, vigil_errors.ErrInvalidDateFormat)
}

func TestParseEndDateParamIsInclusive(t *testing.T) {
	parsed, err := ParseEndDateParam("2026-03-14")
	require.NoError(t, err)
	require.NotNil(t, parsed)

	// The bound covers the entire named day
	assert.True(t, parsed.After(time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)))
	assert.True(t, parsed.Before(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}
