package adminauth

import (
	"errors"
	"testing"
	"time"
)

func TestLoginIssuesParsableToken(t *testing.T) {
	s := NewService("admin", hashOf(t, "secret"), "signing-key", time.Hour, nil)

	token, expires, err := s.Login("admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("token already expired: %v", expires)
	}

	claims, err := s.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Username != "admin" || claims.SID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := NewService("admin", hashOf(t, "secret"), "signing-key", time.Hour, nil)

	if _, _, err := s.Login("admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := s.Login("root", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	s := NewService("admin", hashOf(t, "secret"), "signing-key", time.Hour, nil)
	other := NewService("admin", hashOf(t, "secret"), "different-key", time.Hour, nil)

	token, _, err := other.Login("admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}

	issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	token, _, err = s.Login("admin", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := s.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return hash
}
