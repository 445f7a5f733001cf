package impl

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"
)

// rfc6238Secret is the shared secret the RFC 6238 appendix vectors use.
var rfc6238Secret = base32.StdEncoding.WithPadding(base32.NoPadding).
	EncodeToString([]byte("12345678901234567890"))

func totpAt(unix int64) *TOTPGenerator {
	g := NewTOTPGenerator("shopauth")
	g.now = func() time.Time { return time.Unix(unix, 0).UTC() }
	return g
}

func TestVerifyKnownVectors(t *testing.T) {
	// RFC 6238 Appendix B, truncated to six digits.
	cases := []struct {
		unix int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
		{20000000000, "353130"},
	}
	for _, tc := range cases {
		if !totpAt(tc.unix).Verify("alice@example.com", rfc6238Secret, tc.code) {
			t.Errorf("T=%d: code %s rejected", tc.unix, tc.code)
		}
	}
}

func TestVerifySkewWindow(t *testing.T) {
	g := totpAt(59) // current step 1

	// One step behind (counter 0) and one ahead (counter 2) are tolerated.
	if !g.Verify("alice@example.com", rfc6238Secret, "755224") {
		t.Error("previous step rejected")
	}
	if !g.Verify("alice@example.com", rfc6238Secret, "359152") {
		t.Error("next step rejected")
	}
	// Two steps ahead (counter 3) is outside the window.
	if g.Verify("alice@example.com", rfc6238Secret, "969429") {
		t.Error("code two steps ahead accepted")
	}
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	g := totpAt(59)

	if g.Verify("alice@example.com", rfc6238Secret, "28708") {
		t.Error("short code accepted")
	}
	if g.Verify("alice@example.com", rfc6238Secret, "2870822") {
		t.Error("long code accepted")
	}
	if g.Verify("alice@example.com", "not!base32", "287082") {
		t.Error("invalid secret accepted")
	}
	if g.Verify("alice@example.com", "", "287082") {
		t.Error("empty secret accepted")
	}
}

func TestGenerateSecret(t *testing.T) {
	g := NewTOTPGenerator("shopauth")

	key, err := g.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(key.Secret)
	if err != nil {
		t.Fatalf("secret is not base32: %v", err)
	}
	if len(raw) != totpSecretBytes {
		t.Fatalf("secret length %d, want %d", len(raw), totpSecretBytes)
	}
	if !strings.HasPrefix(key.URI, "otpauth://totp/") {
		t.Fatalf("unexpected URI: %s", key.URI)
	}
	if !strings.Contains(key.URI, "secret="+key.Secret) {
		t.Fatalf("URI does not carry the secret: %s", key.URI)
	}

	other, err := g.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	if other.Secret == key.Secret {
		t.Fatal("two generated secrets should not collide")
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	g := totpAt(1_700_000_000)

	key, err := g.GenerateSecret("alice@example.com")
	if err != nil {
		t.Fatalf("GenerateSecret: %v", err)
	}
	raw, _ := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(key.Secret)
	code := hotp(raw, 1_700_000_000/totpPeriod)

	if !g.Verify("alice@example.com", key.Secret, code) {
		t.Fatal("freshly computed code rejected")
	}
}
