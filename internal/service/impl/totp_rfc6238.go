package impl

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"shopauth/internal/service"
)

const (
	totpSecretBytes = 20
	totpPeriod      = 30
	totpDigits      = 6
	totpSkew        = 1 // time-steps tolerated each direction
)

var _ service.TOTPService = (*TOTPGenerator)(nil)

// TOTPGenerator implements RFC 6238 with the parameters authenticator apps
// default to: 30-second period, 6 digits, HMAC-SHA1.
type TOTPGenerator struct {
	issuer string
	now    func() time.Time
}

func NewTOTPGenerator(issuer string) *TOTPGenerator {
	return &TOTPGenerator{issuer: issuer, now: time.Now}
}

func (g *TOTPGenerator) GenerateSecret(label string) (service.TOTPKey, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return service.TOTPKey{}, err
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)
	return service.TOTPKey{Secret: secret, URI: g.provisioningURI(label, secret)}, nil
}

func (g *TOTPGenerator) provisioningURI(label, secret string) string {
	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", g.issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(totpDigits))
	v.Set("period", strconv.Itoa(totpPeriod))
	return "otpauth://totp/" + url.PathEscape(g.issuer+":"+label) + "?" + v.Encode()
}

// Verify accepts the presented code if it matches the secret at the
// current step or one step either side. Stateless: no replay tracking.
func (g *TOTPGenerator) Verify(label, secret, code string) bool {
	if len(code) != totpDigits {
		return false
	}
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	if err != nil || len(key) == 0 {
		return false
	}

	step := g.now().Unix() / totpPeriod
	for delta := int64(-totpSkew); delta <= totpSkew; delta++ {
		counter := step + delta
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotp(key, counter)), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

func hotp(key []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, key)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	return fmt.Sprintf("%0*d", totpDigits, bin%1000000)
}
