package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"

	"github.com/permkit/permkit"
)

func newHS256Manager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "permkit-test",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func newEd25519Manager(t *testing.T) (*Manager, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	m, err := NewManager(Config{
		TTL:        time.Minute,
		PrivateKey: priv,
		PublicKey:  pub,
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m, priv
}

func TestIssueVerifyRoundTripHS256(t *testing.T) {
	m := newHS256Manager(t)
	mask := permkit.Mask(0x00100033)

	signed, err := m.Issue("service-a", mask, []string{"p1", "p2", "p6"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, got, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != mask {
		t.Fatalf("expected mask %v, got %v", mask, got)
	}
	if claims.Subject != "service-a" {
		t.Fatalf("expected subject service-a, got %s", claims.Subject)
	}
	if len(claims.Permissions) != 3 || claims.Permissions[2] != "p6" {
		t.Fatalf("unexpected permissions: %v", claims.Permissions)
	}
}

func TestIssueVerifyRoundTripEd25519(t *testing.T) {
	m, _ := newEd25519Manager(t)

	signed, err := m.Issue("svc", permkit.Mask(7), nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	_, got, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %v", got)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := newHS256Manager(t)
	signed, err := m.Issue("svc", permkit.Mask(1), nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(signed, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	if _, _, err := m.Verify(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected verification to fail for tampered payload")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	issuer, _ := newEd25519Manager(t)
	verifier, _ := newEd25519Manager(t)

	signed, err := issuer.Issue("svc", permkit.Mask(1), nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := verifier.Verify(signed); err == nil {
		t.Fatal("expected verification to fail under a different key")
	}
}

func TestVerifyRejectsUnknownKid(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	issuer, err := NewManager(Config{
		TTL:        time.Minute,
		PrivateKey: priv,
		PublicKey:  pub,
		KeyID:      "2026-01",
		VerifyKeys: map[string][]byte{"2026-01": pub},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	verifier, err := NewManager(Config{
		TTL:        time.Minute,
		PublicKey:  pub,
		VerifyKeys: map[string][]byte{"2025-12": pub},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := issuer.Issue("svc", permkit.Mask(1), nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := verifier.Verify(signed); err == nil {
		t.Fatal("expected verification to fail for unknown kid")
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{TTL: 0, SigningMethod: MethodHS256, PrivateKey: []byte("k")}); err == nil {
		t.Fatal("expected error for zero TTL")
	}
	if _, err := NewManager(Config{TTL: time.Minute, SigningMethod: MethodHS256}); err == nil {
		t.Fatal("expected error for hs256 without key")
	}
	if _, err := NewManager(Config{TTL: time.Minute, SigningMethod: "rs9000"}); err == nil {
		t.Fatal("expected error for unsupported method")
	}
	if _, err := NewManager(Config{TTL: time.Minute}); err == nil {
		t.Fatal("expected error for ed25519 without verify material")
	}
}
