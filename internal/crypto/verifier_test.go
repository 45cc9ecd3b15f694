package crypto

import (
	"strings"
	"testing"
)

func TestNewVerifier(t *testing.T) {
	hash, err := NewVerifier("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error: %v", err)
	}

	if hash == "" {
		t.Fatal("NewVerifier() returned empty string")
	}

	// Verify PHC format: $argon2id$v=19$m=65536,t=3,p=2$<salt>$<hash>
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("NewVerifier() expected 6 parts, got %d: %q", len(parts), hash)
	}
	if parts[1] != "argon2id" {
		t.Errorf("NewVerifier() algorithm = %q, want %q", parts[1], "argon2id")
	}
	if parts[2] != "v=19" {
		t.Errorf("NewVerifier() version = %q, want %q", parts[2], "v=19")
	}
	if parts[3] != "m=65536,t=3,p=2" {
		t.Errorf("NewVerifier() params = %q, want %q", parts[3], "m=65536,t=3,p=2")
	}
}

func TestCheckVerifierCorrect(t *testing.T) {
	password := "my-secure-password"
	hash, err := NewVerifier(password)
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error: %v", err)
	}

	match, err := CheckVerifier(password, hash)
	if err != nil {
		t.Fatalf("CheckVerifier() unexpected error: %v", err)
	}
	if !match {
		t.Error("CheckVerifier() returned false for correct password")
	}
}

func TestCheckVerifierWrong(t *testing.T) {
	hash, err := NewVerifier("correct-password")
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error: %v", err)
	}

	match, err := CheckVerifier("wrong-password", hash)
	if err != nil {
		t.Fatalf("CheckVerifier() unexpected error: %v", err)
	}
	if match {
		t.Error("CheckVerifier() returned true for wrong password")
	}
}

func TestNewVerifierProducesDifferentHashes(t *testing.T) {
	password := "same-password"

	hash1, err := NewVerifier(password)
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error: %v", err)
	}

	hash2, err := NewVerifier(password)
	if err != nil {
		t.Fatalf("NewVerifier() unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("NewVerifier() produced identical hashes for same password (salt should differ)")
	}
}

func TestCheckVerifierInvalidHash(t *testing.T) {
	_, err := CheckVerifier("password", "invalid-hash-format")
	if err == nil {
		t.Error("CheckVerifier() expected error for invalid hash format")
	}
}

func TestDummyVerifierIsWellFormed(t *testing.T) {
	params, salt, hash, err := decodeHash(dummyVerifier)
	if err != nil {
		t.Fatalf("decodeHash() unexpected error: %v", err)
	}
	if params.Iterations != DefaultHashParams().Iterations || len(salt) == 0 || len(hash) != 32 {
		t.Errorf("decodeHash() params = %+v, salt %d bytes, hash %d bytes", params, len(salt), len(hash))
	}
}
