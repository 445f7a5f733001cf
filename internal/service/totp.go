package service

// TOTPKey is a freshly generated shared secret plus the otpauth:// URI an
// authenticator app enrolls with.
type TOTPKey struct {
	Secret string
	URI    string
}

// TOTPService generates and verifies RFC 6238 time-based codes. Verify is
// stateless given the secret; it tolerates one period of clock skew in
// either direction and keeps no replay cache.
type TOTPService interface {
	GenerateSecret(label string) (TOTPKey, error)
	Verify(label, secret, code string) bool
}
