package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/sharing"
)

var (
	ErrInvalidValidity = errors.New("validity_hours is out of range")
	ErrShareNotFound   = errors.New("share not found")

	// ErrShareUnavailable is the only failure a link holder ever sees, whether
	// the share is unknown, expired, or the token is wrong.
	ErrShareUnavailable = errors.New("share link invalid or expired")
)

// ShareService creates, redeems and manages share links.
type ShareService struct {
	entries  EntryStore
	shares   ShareStore
	keys     KeyRing
	engine   *sharing.Engine
	baseURL  string
	maxHours int
}

// NewShareService creates a new ShareService. Links are built as
// <baseURL>/share/<uuid>/<token>.
func NewShareService(entries EntryStore, shares ShareStore, keys KeyRing, engine *sharing.Engine, baseURL string, maxHours int) *ShareService {
	return &ShareService{
		entries:  entries,
		shares:   shares,
		keys:     keys,
		engine:   engine,
		baseURL:  baseURL,
		maxHours: maxHours,
	}
}

// CreateShare snapshots one of the caller's entries under a fresh share key.
// The returned link is the only place the bearer secret ever appears.
func (s *ShareService) CreateShare(ctx context.Context, p Principal, entryID int64, req model.ShareRequest) (model.ShareResponse, error) {
	if req.ValidityHours < 1 || req.ValidityHours > s.maxHours {
		return model.ShareResponse{}, fmt.Errorf("%w: must be between 1 and %d", ErrInvalidValidity, s.maxHours)
	}

	entry, err := s.entries.GetByID(ctx, p.UserID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.ShareResponse{}, ErrEntryNotFound
		}
		return model.ShareResponse{}, err
	}

	var created sharing.Created
	err = withKey(s.keys, p, func(key []byte) error {
		created, err = s.engine.CreateShare(entry.ID, sealedFromEntry(entry), key, req.ValidityHours)
		return err
	})
	if err != nil {
		if errors.Is(err, sharing.ErrDecryptionFailed) {
			return model.ShareResponse{}, ErrEntryUnreadable
		}
		return model.ShareResponse{}, err
	}

	if err := s.shares.Create(ctx, rowFromShare(created.Share)); err != nil {
		return model.ShareResponse{}, err
	}

	slog.Info("share created", "entry_id", entry.ID, "share_uuid", created.Share.UUID, "validity_hours", req.ValidityHours)
	return model.ShareResponse{
		UUID:       created.Share.UUID,
		Link:       s.link(created.Share.UUID, created.URLToken),
		ExpiryDate: created.Share.ExpiresAt,
	}, nil
}

// RedeemShare opens a share for whoever holds its link. No session is involved.
func (s *ShareService) RedeemShare(ctx context.Context, uuid, token string) (model.SharedEntryResponse, error) {
	row, err := s.shares.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, repository.ErrShareNotFound) {
			return model.SharedEntryResponse{}, ErrShareUnavailable
		}
		return model.SharedEntryResponse{}, err
	}

	fields, err := s.engine.RedeemShare(shareFromRow(row), token)
	if err != nil {
		if errors.Is(err, sharing.ErrShareExpired) || errors.Is(err, sharing.ErrInvalidToken) || errors.Is(err, sharing.ErrDecryptionFailed) {
			slog.Debug("share redemption refused", "share_uuid", uuid, "reason", err)
			return model.SharedEntryResponse{}, ErrShareUnavailable
		}
		return model.SharedEntryResponse{}, err
	}

	return model.SharedEntryResponse{
		Title:      fields.Title,
		Username:   fields.Username,
		Email:      fields.Email,
		Password:   fields.Password,
		URL:        fields.URL,
		ExpiryDate: row.ExpiryDate,
	}, nil
}

// ListShares describes the shares made from one of the caller's entries.
func (s *ShareService) ListShares(ctx context.Context, p Principal, entryID int64) ([]model.ShareSummary, error) {
	if _, err := s.entries.GetByID(ctx, p.UserID, entryID); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	rows, err := s.shares.ListByEntry(ctx, p.UserID, entryID)
	if err != nil {
		return nil, err
	}

	result := make([]model.ShareSummary, len(rows))
	for i := range rows {
		result[i] = model.ShareSummary{
			UUID:       rows[i].UUID,
			ExpiryDate: rows[i].ExpiryDate,
			Expired:    !s.engine.Active(shareFromRow(&rows[i])),
			CreatedAt:  rows[i].CreatedAt,
		}
	}
	return result, nil
}

// RevokeShare deletes a share before it expires.
func (s *ShareService) RevokeShare(ctx context.Context, p Principal, uuid string) error {
	err := s.shares.DeleteByUUID(ctx, p.UserID, uuid)
	if errors.Is(err, repository.ErrShareNotFound) {
		return ErrShareNotFound
	}
	if err == nil {
		slog.Info("share revoked", "share_uuid", uuid)
	}
	return err
}

func (s *ShareService) link(uuid, token string) string {
	return s.baseURL + "/share/" + url.PathEscape(uuid) + "/" + url.PathEscape(token)
}
