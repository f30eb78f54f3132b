// Package cryptox hashes user passwords with argon2id.
package cryptox

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/cbsr/biobank/internal/common"
)

const (
	saltSize = 16
	keySize  = 32
)

// DeriveKey stretches password with salt.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// HashPassword returns a fresh random salt and the derived hash of password.
func HashPassword(password string) (salt, hash []byte) {
	salt = common.GenerateRandByteArray(saltSize)
	return salt, DeriveKey([]byte(password), salt)
}

// VerifyPassword reports whether password derives to hash under salt. The
// comparison takes constant time.
func VerifyPassword(password string, salt, hash []byte) bool {
	got := DeriveKey([]byte(password), salt)
	return subtle.ConstantTimeCompare(got, hash) == 1
}
