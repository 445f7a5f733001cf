package impl

import (
	"shopauth/internal/service"

	"golang.org/x/crypto/bcrypt"
)

var _ service.Hasher = (*BcryptHasher)(nil)

// BcryptHasher salts internally and produces a fixed-length digest. The
// cost keeps the forward hash slow enough to resist brute force.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (h *BcryptHasher) Compare(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
