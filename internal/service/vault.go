package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/codec"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

// weakThreshold is the highest complexity counted as weak on the dashboard.
const weakThreshold = 1

var (
	ErrTitleRequired   = errors.New("title is required")
	ErrEntryPassword   = errors.New("entry password is required")
	ErrEntryNotFound   = errors.New("vault entry not found")
	ErrEntryUnreadable = errors.New("vault entry could not be decrypted")
)

// VaultService seals entries under the caller's session key on the way in
// and unseals them on the way out. Plaintext never reaches the repository.
type VaultService struct {
	repo  EntryStore
	keys  KeyRing
	codec *codec.Codec
}

// NewVaultService creates a new VaultService.
func NewVaultService(repo EntryStore, keys KeyRing, c *codec.Codec) *VaultService {
	return &VaultService{repo: repo, keys: keys, codec: c}
}

// CreateEntry seals and stores a new entry.
func (s *VaultService) CreateEntry(ctx context.Context, p Principal, req model.VaultEntryRequest) (model.VaultEntryResponse, error) {
	if err := validateEntry(req); err != nil {
		return model.VaultEntryResponse{}, err
	}

	entry := model.VaultEntry{UserID: p.UserID}
	err := withKey(s.keys, p, func(key []byte) error {
		sealed, err := s.codec.Seal(fieldsFromRequest(req), key)
		if err != nil {
			return err
		}
		applySealed(&entry, sealed)
		return nil
	})
	if err != nil {
		return model.VaultEntryResponse{}, err
	}

	if err := s.repo.Create(ctx, &entry); err != nil {
		return model.VaultEntryResponse{}, err
	}
	entry.UpdatedAt = time.Now().UTC()

	return toEntryResponse(&entry, fieldsFromRequest(req)), nil
}

// GetEntry returns one decrypted entry.
func (s *VaultService) GetEntry(ctx context.Context, p Principal, id int64) (model.VaultEntryResponse, error) {
	entry, err := s.getOwned(ctx, p.UserID, id)
	if err != nil {
		return model.VaultEntryResponse{}, err
	}

	var fields codec.Fields
	err = withKey(s.keys, p, func(key []byte) error {
		fields, err = s.codec.Unseal(sealedFromEntry(entry), key)
		return err
	})
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptionFailed) {
			return model.VaultEntryResponse{}, ErrEntryUnreadable
		}
		return model.VaultEntryResponse{}, err
	}

	return toEntryResponse(entry, fields), nil
}

// ListEntries returns every entry the caller owns, decrypted. Entries that no
// longer open under the session key are reported in Unreadable. When none of
// them open the session key itself is wrong and ErrEntryUnreadable is returned.
func (s *VaultService) ListEntries(ctx context.Context, p Principal) (model.VaultList, error) {
	entries, err := s.repo.ListByUser(ctx, p.UserID)
	if err != nil {
		return model.VaultList{}, err
	}

	list := model.VaultList{Entries: make([]model.VaultEntryResponse, 0, len(entries))}
	err = withKey(s.keys, p, func(key []byte) error {
		for i := range entries {
			fields, err := s.codec.Unseal(sealedFromEntry(&entries[i]), key)
			if errors.Is(err, crypto.ErrDecryptionFailed) {
				list.Unreadable = append(list.Unreadable, entries[i].ID)
				continue
			}
			if err != nil {
				return err
			}
			list.Entries = append(list.Entries, toEntryResponse(&entries[i], fields))
		}
		return nil
	})
	if err != nil {
		return model.VaultList{}, err
	}

	if len(list.Unreadable) > 0 {
		slog.Warn("vault entries failed to decrypt", "user_id", p.UserID, "unreadable", len(list.Unreadable))
		if len(list.Entries) == 0 {
			return model.VaultList{}, ErrEntryUnreadable
		}
	}
	return list, nil
}

// UpdateEntry re-seals every field and recomputes the complexity score.
// Existing shares keep their snapshot.
func (s *VaultService) UpdateEntry(ctx context.Context, p Principal, id int64, req model.VaultEntryRequest) (model.VaultEntryResponse, error) {
	if err := validateEntry(req); err != nil {
		return model.VaultEntryResponse{}, err
	}

	entry, err := s.getOwned(ctx, p.UserID, id)
	if err != nil {
		return model.VaultEntryResponse{}, err
	}

	err = withKey(s.keys, p, func(key []byte) error {
		sealed, err := s.codec.Seal(fieldsFromRequest(req), key)
		if err != nil {
			return err
		}
		applySealed(entry, sealed)
		return nil
	})
	if err != nil {
		return model.VaultEntryResponse{}, err
	}

	if err := s.repo.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.VaultEntryResponse{}, ErrEntryNotFound
		}
		return model.VaultEntryResponse{}, err
	}
	entry.UpdatedAt = time.Now().UTC()

	return toEntryResponse(entry, fieldsFromRequest(req)), nil
}

// DeleteEntry removes an entry. Its shares outlive it until they expire or are purged.
func (s *VaultService) DeleteEntry(ctx context.Context, p Principal, id int64) error {
	err := s.repo.Delete(ctx, p.UserID, id)
	if errors.Is(err, repository.ErrEntryNotFound) {
		return ErrEntryNotFound
	}
	return err
}

// Stats builds the complexity histogram from plaintext metadata only.
func (s *VaultService) Stats(ctx context.Context, p Principal) (model.VaultStats, error) {
	counts, err := s.repo.ComplexityCounts(ctx, p.UserID)
	if err != nil {
		return model.VaultStats{}, err
	}

	stats := model.VaultStats{ByComplexity: make(map[int]int, len(counts))}
	for complexity, n := range counts {
		stats.ByComplexity[complexity] = n
		stats.Total += n
		if complexity <= weakThreshold {
			stats.Weak += n
		}
	}
	return stats, nil
}

func (s *VaultService) getOwned(ctx context.Context, userID, id int64) (*model.VaultEntry, error) {
	entry, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func validateEntry(req model.VaultEntryRequest) error {
	if req.Title == "" {
		return ErrTitleRequired
	}
	if req.Password == "" {
		return ErrEntryPassword
	}
	return nil
}

func fieldsFromRequest(req model.VaultEntryRequest) codec.Fields {
	return codec.Fields{
		Title:    req.Title,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		URL:      req.URL,
	}
}

func toEntryResponse(e *model.VaultEntry, f codec.Fields) model.VaultEntryResponse {
	return model.VaultEntryResponse{
		ID:         e.ID,
		Title:      f.Title,
		Username:   f.Username,
		Email:      f.Email,
		Password:   f.Password,
		URL:        f.URL,
		Complexity: e.Complexity,
		UpdatedAt:  e.UpdatedAt,
	}
}
