package service

import (
	"context"
	"errors"
	"testing"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
)

func boolPtr(b bool) *bool { return &b }

func TestGenerate_Defaults(t *testing.T) {
	svc := NewGeneratorService()
	resp, err := svc.Generate(context.Background(), model.GenerateRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Length != 16 {
		t.Errorf("expected length 16, got %d", resp.Length)
	}
	if len(resp.Passwords) != 1 || len(resp.Passwords[0]) != 16 {
		t.Fatalf("expected one password of length 16, got %v", resp.Passwords)
	}
	if len(resp.Strength) != 1 || resp.Strength[0] != crypto.Strength(resp.Passwords[0]) {
		t.Errorf("strength %v does not match password", resp.Strength)
	}
}

func TestGenerate_CustomOptions(t *testing.T) {
	svc := NewGeneratorService()
	resp, err := svc.Generate(context.Background(), model.GenerateRequest{
		Length:    32,
		Uppercase: boolPtr(true),
		Lowercase: boolPtr(true),
		Numbers:   boolPtr(false),
		Symbols:   boolPtr(false),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Length != 32 {
		t.Errorf("expected length 32, got %d", resp.Length)
	}
	for _, c := range resp.Passwords[0] {
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')) {
			t.Errorf("unexpected character %q in password with only uppercase+lowercase", c)
		}
	}
}

func TestGenerate_Batch(t *testing.T) {
	svc := NewGeneratorService()
	resp, err := svc.Generate(context.Background(), model.GenerateRequest{Length: 20, Count: 25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Passwords) != 25 || len(resp.Strength) != 25 {
		t.Fatalf("expected 25 passwords and scores, got %d and %d", len(resp.Passwords), len(resp.Strength))
	}
	seen := make(map[string]bool)
	for _, p := range resp.Passwords {
		if len(p) != 20 {
			t.Errorf("expected length 20, got %d", len(p))
		}
		seen[p] = true
	}
	if len(seen) != 25 {
		t.Errorf("expected 25 distinct passwords, got %d", len(seen))
	}
}

func TestGenerate_BatchTooLarge(t *testing.T) {
	svc := NewGeneratorService()
	_, err := svc.Generate(context.Background(), model.GenerateRequest{Count: crypto.MaxBatch + 1})
	if !errors.Is(err, crypto.ErrBatchSize) {
		t.Fatalf("expected ErrBatchSize, got %v", err)
	}
}

func TestGenerate_LengthTooShort(t *testing.T) {
	svc := NewGeneratorService()
	_, err := svc.Generate(context.Background(), model.GenerateRequest{Length: 3})
	if err == nil {
		t.Fatal("expected error for length too short")
	}
}

func TestGenerate_LengthTooLong(t *testing.T) {
	svc := NewGeneratorService()
	_, err := svc.Generate(context.Background(), model.GenerateRequest{Length: 200})
	if err == nil {
		t.Fatal("expected error for length too long")
	}
}

func TestGenerate_NoCharacterTypes(t *testing.T) {
	svc := NewGeneratorService()
	_, err := svc.Generate(context.Background(), model.GenerateRequest{
		Length:    16,
		Uppercase: boolPtr(false),
		Lowercase: boolPtr(false),
		Numbers:   boolPtr(false),
		Symbols:   boolPtr(false),
	})
	if err == nil {
		t.Fatal("expected error when no character types selected")
	}
}
