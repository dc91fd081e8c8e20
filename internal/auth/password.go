package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed so hashes stay comparable across deployments.
const bcryptCost = 12

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a candidate password against a stored hash.
// bcrypt's comparison is constant-time.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// resetCodeDigits is the length of the numeric password-reset code.
const resetCodeDigits = 6

// GenerateResetCode returns a random 6-digit numeric code. The code is
// shown to the user once; only its bcrypt hash is stored.
func GenerateResetCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n), nil
}

const passwordCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomPassword returns a random alphanumeric password for
// accounts created through federated sign-in. The owner never sees it
// and claims one through the reset flow if they want password sign-in.
func GenerateRandomPassword(length int) (string, error) {
	charsetLen := big.NewInt(int64(len(passwordCharset)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			return "", err
		}
		buf[i] = passwordCharset[n.Int64()]
	}
	return string(buf), nil
}

// HashResetCode hashes a reset code for storage. Codes are never
// compared in plaintext.
func HashResetCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	return string(bytes), err
}

// CheckResetCode compares a candidate code against the stored hash.
func CheckResetCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
