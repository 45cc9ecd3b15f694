package service

import (
	"context"
	"errors"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/codec"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/session"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/sharing"
)

// ErrSessionExpired means the caller's token is still signed but its vault key is gone.
var ErrSessionExpired = errors.New("session expired, please log in again")

// Principal identifies the authenticated caller and the session holding their vault key.
type Principal struct {
	UserID    int64
	SessionID string
}

// UserStore is the user persistence used by AuthService.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// EntryStore is the vault entry persistence used by VaultService and ShareService.
type EntryStore interface {
	Create(ctx context.Context, entry *model.VaultEntry) error
	GetByID(ctx context.Context, userID, id int64) (*model.VaultEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]model.VaultEntry, error)
	Update(ctx context.Context, entry *model.VaultEntry) error
	Delete(ctx context.Context, userID, id int64) error
	ComplexityCounts(ctx context.Context, userID int64) (map[int]int, error)
}

// ShareStore is the shared entry persistence used by ShareService.
type ShareStore interface {
	Create(ctx context.Context, s *model.SharedEntry) error
	GetByUUID(ctx context.Context, uuid string) (*model.SharedEntry, error)
	ListByEntry(ctx context.Context, userID, entryID int64) ([]model.SharedEntry, error)
	DeleteByUUID(ctx context.Context, userID int64, uuid string) error
}

// KeyRing holds session keys. *session.Store satisfies it.
type KeyRing interface {
	Create(userID int64, key []byte) (string, error)
	WithKey(id string, userID int64, fn func(key []byte) error) error
	Delete(id string)
	TTL() time.Duration
}

var _ KeyRing = (*session.Store)(nil)

// withKey runs fn with the caller's session key and maps a missing session to ErrSessionExpired.
func withKey(keys KeyRing, p Principal, fn func(key []byte) error) error {
	err := keys.WithKey(p.SessionID, p.UserID, fn)
	if errors.Is(err, session.ErrSessionNotFound) {
		return ErrSessionExpired
	}
	return err
}

func sealedFromEntry(e *model.VaultEntry) codec.Sealed {
	return codec.Sealed{
		Title:      e.Title,
		Username:   e.Username,
		Email:      e.Email,
		Password:   e.Password,
		URL:        e.URL,
		Complexity: e.Complexity,
	}
}

func applySealed(e *model.VaultEntry, s codec.Sealed) {
	e.Title = s.Title
	e.Username = s.Username
	e.Email = s.Email
	e.Password = s.Password
	e.URL = s.URL
	e.Complexity = s.Complexity
}

func shareFromRow(row *model.SharedEntry) sharing.Share {
	s := sharing.Share{
		UUID: row.UUID,
		Sealed: codec.Sealed{
			Title:    row.EncryptedTitle,
			Username: row.EncryptedUsername,
			Email:    row.EncryptedEmail,
			Password: row.EncryptedPassword,
			URL:      row.EncryptedURL,
		},
		ExpiresAt:     row.ExpiryDate,
		SecretID:      row.ShareSecretID,
		KDFIterations: row.KDFIterations,
	}
	if row.OriginalEntryID != nil {
		s.OriginalEntryID = *row.OriginalEntryID
	}
	return s
}

func rowFromShare(s sharing.Share) *model.SharedEntry {
	original := s.OriginalEntryID
	return &model.SharedEntry{
		UUID:              s.UUID,
		EncryptedTitle:    s.Sealed.Title,
		EncryptedUsername: s.Sealed.Username,
		EncryptedEmail:    s.Sealed.Email,
		EncryptedPassword: s.Sealed.Password,
		EncryptedURL:      s.Sealed.URL,
		ExpiryDate:        s.ExpiresAt,
		OriginalEntryID:   &original,
		ShareSecretID:     s.SecretID,
		KDFIterations:     s.KDFIterations,
	}
}
