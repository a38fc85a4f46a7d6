package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// QR payloads are "<dni>:<firma>" where firma is the hex HMAC-SHA256 of the
// DNI under a shared secret. The door kiosk verifies the signature offline
// before touching the roster, so forged codes are rejected without a
// database round trip.

// SignQR returns the signed payload for a DNI.
func SignQR(secret, dni string) string {
	return dni + ":" + qrSignature(secret, dni)
}

// ParseQR splits a payload and verifies its signature. It returns the DNI
// and whether the signature is genuine. Malformed payloads are not genuine.
func ParseQR(secret, payload string) (dni string, ok bool) {
	idx := strings.LastIndex(payload, ":")
	if idx <= 0 || idx == len(payload)-1 {
		return "", false
	}
	dni, sig := payload[:idx], payload[idx+1:]
	expected := qrSignature(secret, dni)
	return dni, hmac.Equal([]byte(sig), []byte(expected))
}

func qrSignature(secret, dni string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(dni))
	return hex.EncodeToString(mac.Sum(nil))
}
