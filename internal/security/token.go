package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
)

// NewRememberToken returns a lookup identifier, the plaintext secret for
// the cookie, and the sha256 of the secret for storage.
func NewRememberToken() (identifier string, secret string, secretHash []byte, err error) {
	idBuf := make([]byte, 16)
	if _, err = rand.Read(idBuf); err != nil {
		return "", "", nil, fmt.Errorf("generate token identifier: %w", err)
	}
	secretBuf := make([]byte, 32)
	if _, err = rand.Read(secretBuf); err != nil {
		return "", "", nil, fmt.Errorf("generate token secret: %w", err)
	}

	identifier = base64.RawURLEncoding.EncodeToString(idBuf)
	secret = base64.RawURLEncoding.EncodeToString(secretBuf)
	return identifier, secret, HashRememberSecret(secret), nil
}

func HashRememberSecret(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	return sum[:]
}

// SecretHashEqual compares a presented secret against the stored hash in
// constant time.
func SecretHashEqual(secret string, storedHash []byte) bool {
	return hmac.Equal(HashRememberSecret(secret), storedHash)
}

const rememberCookieSep = ":"

func EncodeRememberCookie(identifier, secret string) string {
	return identifier + rememberCookieSep + secret
}

func ParseRememberCookie(value string) (identifier, secret string, err error) {
	identifier, secret, ok := strings.Cut(value, rememberCookieSep)
	if !ok || identifier == "" || secret == "" {
		return "", "", fmt.Errorf("malformed remember cookie")
	}
	return identifier, secret, nil
}

// NewCSRFToken mints the per-session anti-forgery value.
func NewCSRFToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate csrf token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CSRFTokenEqual is a constant-time comparison; both sides empty is still
// a mismatch.
func CSRFTokenEqual(expected, presented string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(presented))
}
