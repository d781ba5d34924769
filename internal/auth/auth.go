// Package auth implements the registration and session workflow: public
// registration intake, admin approval, login verification, and cookie-based
// session issuance.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/mail"
)

// minPasswordLength is validated before any hashing or storage access.
const minPasswordLength = 8

// GenerateSessionToken returns a fresh unpredictable opaque token
// (32 random bytes, hex encoded).
func GenerateSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// validEmail reports whether addr parses as a bare RFC 5322 address.
func validEmail(addr string) bool {
	a, err := mail.ParseAddress(addr)
	return err == nil && a.Address == addr
}
