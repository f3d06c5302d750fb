package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// refreshDelimiter joins the session id and the raw secret in the composite
// refresh token. The session id is a UUID and the secret is lowercase hex, so
// the delimiter cannot occur in either field.
const refreshDelimiter = "."

// DefaultSecretBytes is the entropy of a refresh secret before hex encoding.
const DefaultSecretBytes = 32

// GenerateSecret returns n cryptographically random bytes, hex-encoded.
// Entropy failure is not retried; callers treat it as fatal for the request.
func GenerateSecret(n int) (string, error) {
	if n <= 0 {
		n = DefaultSecretBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EncodeRefreshToken builds the opaque wire form of a refresh credential from
// the session id and the raw secret.
func EncodeRefreshToken(sessionID, rawSecret string) string {
	return sessionID + refreshDelimiter + rawSecret
}

// DecodeRefreshToken splits a refresh credential into session id and raw
// secret. Returns ok=false for anything malformed (missing delimiter, empty
// fields); malformed input is "no credential supplied", never an error.
func DecodeRefreshToken(token string) (sessionID, rawSecret string, ok bool) {
	sessionID, rawSecret, ok = strings.Cut(token, refreshDelimiter)
	if !ok || sessionID == "" || rawSecret == "" {
		return "", "", false
	}
	return sessionID, rawSecret, true
}
