// Package identity implements the digest and identity derivation functions
// used by the credential store and the session state machine.
package identity

import (
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/sha3"
)

// MinPasswordLength is the minimum accepted plaintext password length.
const MinPasswordLength = 8

// MaxPasswordLength is the maximum accepted plaintext password length.
const MaxPasswordLength = 256

// ErrPasswordTooShort is returned when a password is shorter than MinPasswordLength.
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ErrPasswordTooLong is returned when a password is longer than MaxPasswordLength.
var ErrPasswordTooLong = errors.New("password must be at most 256 characters")

// ValidatePassword checks a plaintext password against length constraints.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword returns the lowercase hex Keccak-256 digest of a plaintext
// password: hex(K(plaintext)). This is the value persisted as the users
// table's password column.
func HashPassword(password string) string {
	return keccakHex(password)
}

// VerifyPassword reports whether plaintext hashes to the given stored digest.
func VerifyPassword(password, storedDigest string) bool {
	return HashPassword(password) == storedDigest
}

// DeriveIdentity computes the session identity hex(K(username + ":" +
// storedDigest)) for an authenticated user. Both username and storedDigest
// are taken exactly as stored; the result is the namespace key for that
// user's UserStore.
func DeriveIdentity(username, storedDigest string) string {
	return keccakHex(username + ":" + storedDigest)
}

// keccakHex returns the lowercase hex encoding of the Keccak-256 digest of s.
func keccakHex(s string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
