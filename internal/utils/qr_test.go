package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignQRRoundTrip(t *testing.T) {
	payload := SignQR("secret", "30123456")

	dni, ok := ParseQR("secret", payload)
	assert.True(t, ok)
	assert.Equal(t, "30123456", dni)
}

func TestSignQRDeterministic(t *testing.T) {
	assert.Equal(t, SignQR("secret", "30123456"), SignQR("secret", "30123456"))
	assert.NotEqual(t, SignQR("secret", "30123456"), SignQR("secret", "30123457"))
	assert.NotEqual(t, SignQR("secret", "30123456"), SignQR("other", "30123456"))
}

func TestParseQRRejectsForgedSignature(t *testing.T) {
	payload := SignQR("secret", "30123456")
	idx := strings.LastIndex(payload, ":")
	forged := "40999999" + payload[idx:] // signature lifted from another DNI

	_, ok := ParseQR("secret", forged)
	assert.False(t, ok)
}

func TestParseQRRejectsWrongSecret(t *testing.T) {
	payload := SignQR("secret", "30123456")
	_, ok := ParseQR("another-secret", payload)
	assert.False(t, ok)
}

func TestParseQRRejectsMalformedPayloads(t *testing.T) {
	for _, payload := range []string{"", "30123456", ":abcdef", "30123456:", "plain text"} {
		_, ok := ParseQR("secret", payload)
		assert.False(t, ok, payload)
	}
}
