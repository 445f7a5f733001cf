package dto

import "shopauth/internal/domain"

type ProofKind int

const (
	// ProofTOTP is a 6-digit authenticator-app code.
	ProofTOTP ProofKind = iota
	// ProofEmailOTP is a 6-digit code delivered by email.
	ProofEmailOTP
)

// TwoFactorProof is the tagged union behind the wire-level totpCode/code
// pair: exactly one kind, one code.
type TwoFactorProof struct {
	Kind ProofKind
	Code string
}

func proofFrom(totpCode, emailCode string, required bool) (*TwoFactorProof, error) {
	switch {
	case totpCode != "" && emailCode != "":
		return nil, domain.ErrInvalidTOTPAndCode
	case totpCode != "":
		return &TwoFactorProof{Kind: ProofTOTP, Code: totpCode}, nil
	case emailCode != "":
		return &TwoFactorProof{Kind: ProofEmailOTP, Code: emailCode}, nil
	case required:
		return nil, domain.ErrInvalidTOTPAndCode
	default:
		return nil, nil
	}
}
