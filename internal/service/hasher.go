package service

// Hasher is the one-way password hashing contract. Compare never reports
// an error for a mismatch, only false.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, digest string) bool
}
