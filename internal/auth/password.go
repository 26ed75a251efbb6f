package auth

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Cost is the bcrypt work factor used by HashPassword.
var Cost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt digest of p.
func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), Cost)
	return string(b), err
}

// VerifyPassword reports whether plain matches the stored digest.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// BurnVerify runs a comparison against a throwaway digest so a lookup for an
// unknown user costs about as much as a wrong password.
func BurnVerify(plain string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("grocerify-unknown-user"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
