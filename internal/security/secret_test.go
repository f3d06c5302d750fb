package security

import (
	"strings"
	"testing"
)

func TestGenerateSecret(t *testing.T) {
	s1, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if len(s1) != 64 {
		t.Errorf("secret length: want 64 hex chars, got %d", len(s1))
	}
	if strings.Contains(s1, ".") {
		t.Error("secret must not contain the token delimiter")
	}
	s2, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if s1 == s2 {
		t.Error("two generated secrets must differ")
	}
}

func TestGenerateSecret_DefaultLength(t *testing.T) {
	s, err := GenerateSecret(0)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if len(s) != DefaultSecretBytes*2 {
		t.Errorf("default secret length: want %d, got %d", DefaultSecretBytes*2, len(s))
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	sessionID := "7f8b9c2e-1d3a-4e5f-8a9b-0c1d2e3f4a5b"
	secret, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	token := EncodeRefreshToken(sessionID, secret)
	sid, sec, ok := DecodeRefreshToken(token)
	if !ok {
		t.Fatal("decode of a well-formed token must succeed")
	}
	if sid != sessionID || sec != secret {
		t.Errorf("round trip: got (%q, %q)", sid, sec)
	}
}

func TestDecodeRefreshToken_Malformed(t *testing.T) {
	cases := []string{
		"",
		"no-delimiter",
		".secret-without-session",
		"session-without-secret.",
		".",
	}
	for _, c := range cases {
		if _, _, ok := DecodeRefreshToken(c); ok {
			t.Errorf("DecodeRefreshToken(%q): want ok=false", c)
		}
	}
}

func TestDecodeRefreshToken_ExtraDelimiter(t *testing.T) {
	// Only the first delimiter splits; the remainder is the secret as-is, and
	// secret verification is what ultimately rejects it.
	sid, sec, ok := DecodeRefreshToken("sess.abc.def")
	if !ok {
		t.Fatal("want ok=true")
	}
	if sid != "sess" || sec != "abc.def" {
		t.Errorf("got (%q, %q)", sid, sec)
	}
}
