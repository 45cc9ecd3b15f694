package service

import (
	"context"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
)

// GeneratorService handles password generation business logic.
type GeneratorService struct{}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService() *GeneratorService {
	return &GeneratorService{}
}

// Generate produces one password, or Count passwords generated in parallel,
// each with its strength score.
func (s *GeneratorService) Generate(ctx context.Context, req model.GenerateRequest) (model.GenerateResponse, error) {
	opts := crypto.GeneratorOptions{
		Length:    req.Length,
		Uppercase: boolOrDefault(req.Uppercase, true),
		Lowercase: boolOrDefault(req.Lowercase, true),
		Numbers:   boolOrDefault(req.Numbers, true),
		Symbols:   boolOrDefault(req.Symbols, true),
	}

	if opts.Length == 0 {
		opts.Length = 16
	}

	var passwords []string
	if req.Count <= 1 {
		password, err := crypto.Generate(opts)
		if err != nil {
			return model.GenerateResponse{}, err
		}
		passwords = []string{password}
	} else {
		batch, err := crypto.GenerateBatch(ctx, opts, req.Count)
		if err != nil {
			return model.GenerateResponse{}, err
		}
		passwords = batch
	}

	strength := make([]int, len(passwords))
	for i, p := range passwords {
		strength[i] = crypto.Strength(p)
	}

	return model.GenerateResponse{
		Passwords: passwords,
		Length:    opts.Length,
		Strength:  strength,
	}, nil
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
