package domain

import (
	"errors"
	"net/http"
)

// AuthError is a pre-built domain error. It carries the HTTP status the
// boundary should answer with, a stable machine-readable message code, and
// an optional field path so clients can highlight the offending input.
// Domain errors propagate unchanged to the HTTP boundary; anything else is
// mapped to a generic 500 there.
type AuthError struct {
	Status int    `json:"-"`
	Code   string `json:"message"`
	Path   string `json:"path,omitempty"`
}

func (e *AuthError) Error() string { return e.Code }

// Is lets errors.Is match against the prebuilt sentinel values below.
func (e *AuthError) Is(target error) bool {
	t, ok := target.(*AuthError)
	return ok && t.Code == e.Code
}

func newFieldError(code, path string) *AuthError {
	return &AuthError{Status: http.StatusUnprocessableEntity, Code: code, Path: path}
}

var (
	ErrInvalidCredential  = newFieldError("Error.InvalidCredential", "email")
	ErrEmailAlreadyExists = newFieldError("Error.EmailAlreadyExists", "email")
	ErrEmailNotFound      = newFieldError("Error.EmailNotFound", "email")
	ErrInvalidPassword    = newFieldError("Error.InvalidPassword", "password")
	ErrPasswordMismatch   = newFieldError("Error.PasswordsDoNotMatch", "confirmPassword")

	ErrInvalidOTP      = newFieldError("Error.InvalidOTP", "code")
	ErrOTPExpired      = newFieldError("Error.OTPExpired", "code")
	ErrFailedToSendOTP = newFieldError("Error.FailedToSendOTP", "code")

	ErrInvalidTOTP        = newFieldError("Error.InvalidTOTP", "totpCode")
	ErrInvalidTOTPAndCode = newFieldError("Error.InvalidTOTPAndCode", "totpCode")
	ErrTOTPAlreadyEnabled = newFieldError("Error.TOTPAlreadyEnabled", "totpCode")
	ErrTOTPNotEnabled     = newFieldError("Error.TOTPNotEnabled", "totpCode")

	ErrRefreshTokenAlreadyUsed = &AuthError{Status: http.StatusUnauthorized, Code: "Error.RefreshTokenAlreadyUsed"}
	ErrUnauthorizedAccess      = &AuthError{Status: http.StatusUnauthorized, Code: "Error.UnauthorizedAccess"}
	ErrInvalidOrExpiredToken   = &AuthError{Status: http.StatusUnauthorized, Code: "Error.InvalidOrExpiredToken"}

	ErrUnauthorized = &AuthError{Status: http.StatusUnauthorized, Code: "Error.Unauthorized"}
	ErrForbidden    = &AuthError{Status: http.StatusForbidden, Code: "Error.Forbidden"}

	ErrGoogleUserInfo = &AuthError{Status: http.StatusBadRequest, Code: "Error.FailedToGetGoogleUserInfo"}

	ErrNotFoundRecord = &AuthError{Status: http.StatusNotFound, Code: "Error.NotFound"}
)

// AsAuthError unwraps err into an *AuthError if one is in the chain.
func AsAuthError(err error) (*AuthError, bool) {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
