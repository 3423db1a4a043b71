package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeE164(t *testing.T) {
	got, err := NormalizeE164("+1-876-555-0100", "US")
	require.NoError(t, err)
	assert.Equal(t, "+18765550100", got)

	got, err = NormalizeE164("(202) 555-0143", "us")
	require.NoError(t, err)
	assert.Equal(t, "+12025550143", got)
}

func TestNormalizeE164_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "abc", "12"} {
		_, err := NormalizeE164(raw, "US")
		assert.ErrorIs(t, err, ErrInvalidPhoneNumber, raw)
	}
}

func TestWhatsAppRecipient(t *testing.T) {
	got, err := WhatsAppRecipient("+44 20 7946 0958", "US")
	require.NoError(t, err)
	assert.Equal(t, "442079460958", got)
}
