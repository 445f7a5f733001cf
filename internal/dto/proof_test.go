package dto

import (
	"testing"

	"shopauth/internal/domain"
)

func TestLoginProof(t *testing.T) {
	t.Run("absent proof is allowed", func(t *testing.T) {
		p, err := LoginRequest{}.Proof()
		if err != nil {
			t.Fatalf("Proof: %v", err)
		}
		if p != nil {
			t.Fatalf("expected nil proof, got %+v", p)
		}
	})

	t.Run("totp code", func(t *testing.T) {
		p, err := LoginRequest{TOTPCode: "123456"}.Proof()
		if err != nil {
			t.Fatalf("Proof: %v", err)
		}
		if p.Kind != ProofTOTP || p.Code != "123456" {
			t.Fatalf("unexpected proof: %+v", p)
		}
	})

	t.Run("email code", func(t *testing.T) {
		p, err := LoginRequest{Code: "482913"}.Proof()
		if err != nil {
			t.Fatalf("Proof: %v", err)
		}
		if p.Kind != ProofEmailOTP || p.Code != "482913" {
			t.Fatalf("unexpected proof: %+v", p)
		}
	})

	t.Run("both codes are rejected", func(t *testing.T) {
		_, err := LoginRequest{TOTPCode: "123456", Code: "482913"}.Proof()
		if err != domain.ErrInvalidTOTPAndCode {
			t.Fatalf("expected ErrInvalidTOTPAndCode, got %v", err)
		}
	})
}

func TestDisableTwoFactorProof(t *testing.T) {
	t.Run("absent proof is rejected", func(t *testing.T) {
		_, err := DisableTwoFactorRequest{}.Proof()
		if err != domain.ErrInvalidTOTPAndCode {
			t.Fatalf("expected ErrInvalidTOTPAndCode, got %v", err)
		}
	})

	t.Run("exactly one proof passes", func(t *testing.T) {
		p, err := DisableTwoFactorRequest{TOTPCode: "123456"}.Proof()
		if err != nil {
			t.Fatalf("Proof: %v", err)
		}
		if p.Kind != ProofTOTP {
			t.Fatalf("unexpected proof: %+v", p)
		}
	})

	t.Run("both proofs are rejected", func(t *testing.T) {
		_, err := DisableTwoFactorRequest{TOTPCode: "123456", Code: "482913"}.Proof()
		if err != domain.ErrInvalidTOTPAndCode {
			t.Fatalf("expected ErrInvalidTOTPAndCode, got %v", err)
		}
	})
}

func TestPasswordConfirmation(t *testing.T) {
	if err := (RegisterRequest{Password: "a", ConfirmPassword: "a"}).Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := (RegisterRequest{Password: "a", ConfirmPassword: "b"}).Validate(); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
	if err := (ForgotPasswordRequest{NewPassword: "a", ConfirmPassword: "b"}).Validate(); err != domain.ErrPasswordMismatch {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}
