package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

// RandomNumericString generates a random string containing only digits.
func RandomNumericString(length int) (string, error) {
	const digits = "0123456789"
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b[i] = digits[num.Int64()]
	}
	return string(b), nil
}

// RandomToken generates an opaque URL-safe token from nBytes of
// crypto randomness. Suitable for embedding in printed QR codes.
func RandomToken(nBytes int) (string, error) {
	raw := make([]byte, nBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
