package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token is malformed, tampered, expired,
// or otherwise fails validation.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims holds JWT claims for the access token. The subject is the
// account id; SessionID binds the credential to one session lineage.
type AccessClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// emailVerifyClaims holds JWT claims for the email-verification link token.
// Purpose pins the token to the verify-email flow so an access token can
// never be replayed there (and vice versa).
type emailVerifyClaims struct {
	jwt.RegisteredClaims
	Purpose string `json:"purpose"`
}

const emailVerifyPurpose = "verify_email"

// TokenProvider issues and validates HS256-signed JWTs using a process-wide
// signing secret. The secret's absence is a startup error, not a per-request
// concern (config.Load enforces it).
type TokenProvider struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
	verifyTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with secret. accessTTL
// bounds access credentials; verifyTTL bounds email-verification tokens.
func NewTokenProvider(secret []byte, issuer string, accessTTL, verifyTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:    secret,
		issuer:    issuer,
		accessTTL: accessTTL,
		verifyTTL: verifyTTL,
	}
}

// IssueAccess issues a short-lived access JWT binding accountID and
// sessionID. Returns the signed token and its expiry.
func (p *TokenProvider) IssueAccess(accountID, sessionID string) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	return token, expiresAt, err
}

// ValidateAccess parses and validates an access token (signature, expiry,
// issuer). Returns the account id and session id, or ErrInvalidToken.
func (p *TokenProvider) ValidateAccess(tokenString string) (accountID, sessionID string, err error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
	)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.SessionID, nil
}

// IssueEmailVerification issues the purpose-bound token embedded in the
// verification link sent to a new account's email address.
func (p *TokenProvider) IssueEmailVerification(accountID string) (string, error) {
	now := time.Now().UTC()
	claims := emailVerifyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.verifyTTL)),
		},
		Purpose: emailVerifyPurpose,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// ValidateEmailVerification validates a verification-link token and returns
// the account id it was issued for.
func (p *TokenProvider) ValidateEmailVerification(tokenString string) (accountID string, err error) {
	claims := &emailVerifyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, p.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Purpose != emailVerifyPurpose || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (p *TokenProvider) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ErrInvalidToken
	}
	return p.secret, nil
}
