package security

import "time"

// NewTestTokenProvider returns a TokenProvider with a fixed signing secret
// and default TTLs. For unit tests only.
func NewTestTokenProvider() *TokenProvider {
	return NewTokenProvider([]byte("test-signing-secret-0123456789abcdef"), "test-issuer", 15*time.Minute, 48*time.Hour)
}
