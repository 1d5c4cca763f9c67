package services

import (
	"errors"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	s := NewAuthService("test-secret", 24)

	hash, err := s.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("password stored in the clear")
	}

	if !s.CheckPassword("correct horse battery staple", hash) {
		t.Error("correct password rejected")
	}
	if s.CheckPassword("wrong password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	s := NewAuthService("test-secret", 24)

	token, err := s.GenerateToken(42, "alice", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := s.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("Username = %q, want alice", claims.Username)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService("secret-a", 24)
	verifier := NewAuthService("secret-b", 24)

	token, err := issuer.GenerateToken(1, "bob", "user")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	s := NewAuthService("test-secret", -1)

	token, err := s.GenerateToken(1, "carol", "user")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("got %v, want ErrExpiredToken", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	s := NewAuthService("test-secret", 24)

	for _, tc := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := s.ValidateToken(tc); err == nil {
			t.Errorf("garbage token %q accepted", tc)
		}
	}
}
