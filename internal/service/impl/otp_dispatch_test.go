package impl

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"shopauth/internal/domain"
	"shopauth/internal/store"
)

type stubUserReader struct {
	users map[string]*domain.User
}

func (s *stubUserReader) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrRecordNotFound
}

type memoryCodeStore struct {
	rows map[string]*domain.VerificationCode
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{rows: make(map[string]*domain.VerificationCode)}
}

func (s *memoryCodeStore) Upsert(ctx context.Context, code *domain.VerificationCode) error {
	cp := *code
	s.rows[otpKey(code.Email, code.Code, code.Type)] = &cp
	return nil
}

func (s *memoryCodeStore) Get(ctx context.Context, email, code string, typ domain.VerificationCodeType) (*domain.VerificationCode, error) {
	vc, ok := s.rows[otpKey(email, code, typ)]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	cp := *vc
	return &cp, nil
}

type recordingMailer struct {
	sent []struct{ to, subject, body string }
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, struct{ to, subject, body string }{to, subject, body})
	return nil
}

func newTestDispatcher(users *stubUserReader, codes *memoryCodeStore, m *recordingMailer) *OTPDispatcher {
	return &OTPDispatcher{
		users:  users,
		codes:  codes,
		mailer: m,
		ttl:    5 * time.Minute,
		now:    time.Now,
	}
}

func TestSendOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("registration code for a fresh email", func(t *testing.T) {
		codes := newMemoryCodeStore()
		m := &recordingMailer{}
		d := newTestDispatcher(&stubUserReader{}, codes, m)

		vc, err := d.Send(ctx, "new@example.com", domain.VerificationRegister)
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if len(vc.Code) != 6 {
			t.Fatalf("code %q is not six digits", vc.Code)
		}
		if len(m.sent) != 1 {
			t.Fatalf("expected one delivery, got %d", len(m.sent))
		}
		if !strings.Contains(m.sent[0].body, vc.Code) {
			t.Fatal("message body does not carry the code")
		}
		if _, err := codes.Get(ctx, "new@example.com", vc.Code, domain.VerificationRegister); err != nil {
			t.Fatalf("code not persisted: %v", err)
		}
	})

	t.Run("registration for a taken email", func(t *testing.T) {
		users := &stubUserReader{users: map[string]*domain.User{
			"taken@example.com": {ID: 1, Email: "taken@example.com"},
		}}
		d := newTestDispatcher(users, newMemoryCodeStore(), &recordingMailer{})

		if _, err := d.Send(ctx, "taken@example.com", domain.VerificationRegister); err != domain.ErrEmailAlreadyExists {
			t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
		}
	})

	t.Run("forgot-password for an unknown email", func(t *testing.T) {
		d := newTestDispatcher(&stubUserReader{}, newMemoryCodeStore(), &recordingMailer{})

		if _, err := d.Send(ctx, "ghost@example.com", domain.VerificationForgotPassword); err != domain.ErrEmailNotFound {
			t.Fatalf("expected ErrEmailNotFound, got %v", err)
		}
	})

	t.Run("delivery failure keeps the row", func(t *testing.T) {
		users := &stubUserReader{users: map[string]*domain.User{
			"alice@example.com": {ID: 1, Email: "alice@example.com"},
		}}
		codes := newMemoryCodeStore()
		d := newTestDispatcher(users, codes, &recordingMailer{err: errors.New("smtp down")})

		_, err := d.Send(ctx, "alice@example.com", domain.VerificationForgotPassword)
		if err != domain.ErrFailedToSendOTP {
			t.Fatalf("expected ErrFailedToSendOTP, got %v", err)
		}
		if len(codes.rows) != 1 {
			t.Fatal("persisted row should survive a failed delivery")
		}
	})
}

func TestValidateOTP(t *testing.T) {
	ctx := context.Background()
	codes := newMemoryCodeStore()
	d := newTestDispatcher(&stubUserReader{}, codes, &recordingMailer{})

	_ = codes.Upsert(ctx, &domain.VerificationCode{
		Email:     "alice@example.com",
		Code:      "482913",
		Type:      domain.VerificationLogin,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	})
	_ = codes.Upsert(ctx, &domain.VerificationCode{
		Email:     "alice@example.com",
		Code:      "111111",
		Type:      domain.VerificationLogin,
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	if _, err := d.Validate(ctx, "alice@example.com", "482913", domain.VerificationLogin); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	// Validation does not consume.
	if _, err := d.Validate(ctx, "alice@example.com", "482913", domain.VerificationLogin); err != nil {
		t.Fatalf("second Validate: %v", err)
	}

	if _, err := d.Validate(ctx, "alice@example.com", "000000", domain.VerificationLogin); err != domain.ErrInvalidOTP {
		t.Fatalf("expected ErrInvalidOTP, got %v", err)
	}
	if _, err := d.Validate(ctx, "alice@example.com", "111111", domain.VerificationLogin); err != domain.ErrOTPExpired {
		t.Fatalf("expected ErrOTPExpired, got %v", err)
	}
	if _, err := d.Validate(ctx, "alice@example.com", "482913", domain.VerificationRegister); err != domain.ErrInvalidOTP {
		t.Fatalf("wrong type should read as ErrInvalidOTP, got %v", err)
	}
}

func TestFormatOTP(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{0, "000000"},
		{7, "000007"},
		{482913, "482913"},
		{999999, "999999"},
	}
	for _, tc := range cases {
		if got := formatOTP(tc.n); got != tc.want {
			t.Errorf("formatOTP(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
