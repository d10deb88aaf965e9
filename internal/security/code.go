package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
)

var codeBound = big.NewInt(1000000)

// GenerateVerificationCode returns a fixed-width 6-digit numeric code.
// Leading zeros are significant: the code is a string and must only ever
// be compared as one.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeBound)
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateVerificationCodeInsecure is the fallback when the system's
// secure source is unavailable. Callers must log that the fallback fired.
func GenerateVerificationCodeInsecure() string {
	return fmt.Sprintf("%06d", mrand.Intn(1000000))
}
