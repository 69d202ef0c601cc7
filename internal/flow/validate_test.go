package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDigits(t *testing.T) {
	v, err := validateDigits(" 12345 ")
	require.NoError(t, err)
	assert.Equal(t, "12345", v)

	for _, in := range []string{"", "12a45", "1.5", "uno"} {
		_, err := validateDigits(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidateOrder(t *testing.T) {
	v, err := validateOrder("1234567")
	require.NoError(t, err)
	assert.Equal(t, "1234567", v)

	for _, in := range []string{"123456", "12345678", "123456a", ""} {
		_, err := validateOrder(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidateClock(t *testing.T) {
	for _, in := range []string{"00:00", "09:30", "23:59"} {
		v, err := validateClock(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, in, v)
	}
	for _, in := range []string{"24:00", "9:99", "noon", "12.30", ""} {
		_, err := validateClock(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidationErrorHintSurfaces(t *testing.T) {
	_, err := validateOrder("12")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Hint, "7 dígitos")
}
