package auth

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("unit-test-secret-0123456789abcdef")
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	if _, err := NewTokenManager(""); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestMintVerify_Roundtrip(t *testing.T) {
	m := newManager(t)

	want := Credential{
		SubjectID:   "64f0c2a1b2c3d4e5f6a7b8c9",
		Role:        "Accountant",
		Permissions: []string{"VIEW_PAYROLL", "MANAGE_EXPENSES"},
	}
	raw, err := m.Mint(want, testNow, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	got, err := m.Verify(raw, testNow)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.SubjectID != want.SubjectID {
		t.Errorf("subject: got %q, want %q", got.SubjectID, want.SubjectID)
	}
	if got.Role != want.Role {
		t.Errorf("role: got %q, want %q", got.Role, want.Role)
	}
	if len(got.Permissions) != 2 || got.Permissions[0] != "VIEW_PAYROLL" {
		t.Errorf("permissions: got %v", got.Permissions)
	}
	if !got.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Errorf("expiresAt: got %v", got.ExpiresAt)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := newManager(t)

	for _, raw := range []string{"", "not-a-token", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30."} {
		if _, err := m.Verify(raw, testNow); !errors.Is(err, ErrInvalidCredential) {
			t.Errorf("Verify(%q): got %v, want ErrInvalidCredential", raw, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newManager(t)
	other, _ := NewTokenManager("a-completely-different-secret-value")

	raw, err := other.Mint(Credential{SubjectID: "u1"}, testNow, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := m.Verify(raw, testNow); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("token signed with wrong secret verified: %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	m := newManager(t)

	raw, err := m.Mint(Credential{SubjectID: "u1"}, testNow, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	tampered := raw[:len(raw)-2] + "xx"
	if _, err := m.Verify(tampered, testNow); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("tampered token verified: %v", err)
	}
}

// Expiry is an inclusive boundary: a token is valid one second before its
// expiry instant and invalid at the instant itself.
func TestVerify_ExpiryBoundary(t *testing.T) {
	m := newManager(t)

	raw, err := m.Mint(Credential{SubjectID: "u1"}, testNow, time.Minute)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	exp := testNow.Add(time.Minute)

	if _, err := m.Verify(raw, exp.Add(-time.Second)); err != nil {
		t.Errorf("token one second before expiry rejected: %v", err)
	}
	if _, err := m.Verify(raw, exp); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("token at exact expiry instant accepted: %v", err)
	}
	if _, err := m.Verify(raw, exp.Add(time.Second)); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("token past expiry accepted: %v", err)
	}
}

func TestRotate_InvalidatesOldTokens(t *testing.T) {
	m := newManager(t)

	raw, err := m.Mint(Credential{SubjectID: "u1"}, testNow, time.Hour)
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	m.Rotate("rotated-secret-0123456789abcdefgh")

	if _, err := m.Verify(raw, testNow); !errors.Is(err, ErrInvalidCredential) {
		t.Errorf("token under retired secret still verifies: %v", err)
	}

	raw2, err := m.Mint(Credential{SubjectID: "u1"}, testNow, time.Hour)
	if err != nil {
		t.Fatalf("Mint after rotate: %v", err)
	}
	if _, err := m.Verify(raw2, testNow); err != nil {
		t.Errorf("token under new secret rejected: %v", err)
	}
}
