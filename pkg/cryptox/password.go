package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor applied to every stored credential,
// including generated temporary passwords.
const HashCost = 10

// tempPasswordAlphabet matches the alphabet used for generated public
// identifiers in earlier revisions of the platform; temporary passwords are
// only ever transcribed once, so ambiguity isn't a concern.
const tempPasswordAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// TempPasswordLength is the length of generated temporary passwords.
const TempPasswordLength = 10

// HashPassword produces a salted bcrypt digest of the plaintext. Plaintext
// passwords must never reach a store; services hash before persistence.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword reports whether the plaintext matches the bcrypt digest.
// bcrypt's own comparison is used, which is safe against timing analysis.
// An empty digest (user invited but not yet activated) never matches.
func VerifyPassword(password, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// GenerateTempPassword returns a random lowercase alphanumeric password for
// freshly invited users. The caller sees it exactly once; only its hash is
// ever stored.
func GenerateTempPassword() (string, error) {
	password := make([]byte, TempPasswordLength)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tempPasswordAlphabet))))
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate temp password: %w", err)
		}
		password[i] = tempPasswordAlphabet[n.Int64()]
	}
	return string(password), nil
}
