package security

import (
	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords and refresh secrets using bcrypt.
// Callers must not log or persist the plaintext input. Stored hashes are only
// ever checked through Compare or Verify, never by direct comparison.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31). Cost 10
// matches the original deployment's interactive-login tuning.
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of plain. Returns the hash as a string suitable
// for storage. bcrypt only reads the first 72 bytes; refresh secrets are
// 64-char hex strings and fit.
func (h *Hasher) Hash(plain []byte) (string, error) {
	b, err := bcrypt.GenerateFromPassword(plain, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies plain against the stored hash in constant time. Returns
// nil if they match; bcrypt.ErrMismatchedHashAndPassword (or a parse error)
// if they do not.
func (h *Hasher) Compare(hash string, plain []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), plain)
}

// Verify is Compare as a boolean: true only on a match. It never reports why
// verification failed, so callers cannot leak the reason.
func (h *Hasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
