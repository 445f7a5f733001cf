package gate

import (
	"crypto/subtle"
	"net/http"

	"shopauth/internal/domain"
)

// APIKeyStrategy compares the X-API-Key header against a pre-shared
// secret.
type APIKeyStrategy struct {
	secret string
}

func (s *APIKeyStrategy) Authenticate(r *http.Request) (*http.Request, error) {
	key := r.Header.Get("X-API-Key")
	if !secretsEqual(key, s.secret) {
		return nil, domain.ErrUnauthorized
	}
	return r, nil
}

// PaymentAPIKeyStrategy authenticates payment-provider webhooks that
// present their key bearer-style.
type PaymentAPIKeyStrategy struct {
	secret string
}

func (s *PaymentAPIKeyStrategy) Authenticate(r *http.Request) (*http.Request, error) {
	key, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok || !secretsEqual(key, s.secret) {
		return nil, domain.ErrUnauthorized
	}
	return r, nil
}

func secretsEqual(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
