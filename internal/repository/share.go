package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
)

var ErrShareNotFound = errors.New("shared entry not found")

// ShareRepository persists shared entry snapshots. It never sees a bearer secret.
type ShareRepository struct {
	db *sql.DB
}

// NewShareRepository creates a new ShareRepository.
func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

const shareColumns = `id, uuid, encrypted_title, encrypted_username, encrypted_email, encrypted_password,
	encrypted_url, expiry_date, original_entry_id, share_secret_id, kdf_iterations, created_at`

// Create inserts a shared entry in a single statement and sets the generated ID.
func (r *ShareRepository) Create(ctx context.Context, s *model.SharedEntry) error {
	query := `INSERT INTO shared_entries (uuid, encrypted_title, encrypted_username, encrypted_email,
		encrypted_password, encrypted_url, expiry_date, original_entry_id, share_secret_id, kdf_iterations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		s.UUID, s.EncryptedTitle, s.EncryptedUsername, s.EncryptedEmail,
		s.EncryptedPassword, s.EncryptedURL, s.ExpiryDate.UTC(), s.OriginalEntryID, s.ShareSecretID,
		s.KDFIterations,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	s.ID = id
	return nil
}

// GetByUUID retrieves a share by its public uuid, expired or not.
func (r *ShareRepository) GetByUUID(ctx context.Context, uuid string) (*model.SharedEntry, error) {
	query := `SELECT ` + shareColumns + ` FROM shared_entries WHERE uuid = ?`

	s := &model.SharedEntry{}
	var original sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, uuid).Scan(shareTargets(s, &original)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	if original.Valid {
		s.OriginalEntryID = &original.Int64
	}

	return s, nil
}

// ListByEntry returns the shares snapshotted from one of the user's entries, newest first.
func (r *ShareRepository) ListByEntry(ctx context.Context, userID, entryID int64) ([]model.SharedEntry, error) {
	query := `SELECT s.id, s.uuid, s.encrypted_title, s.encrypted_username, s.encrypted_email,
		s.encrypted_password, s.encrypted_url, s.expiry_date, s.original_entry_id, s.share_secret_id, s.kdf_iterations, s.created_at
		FROM shared_entries s
		JOIN vault_entries v ON v.id = s.original_entry_id
		WHERE v.id = ? AND v.user_id = ?
		ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.db.QueryContext(ctx, query, entryID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []model.SharedEntry
	for rows.Next() {
		var s model.SharedEntry
		var original sql.NullInt64
		if err := rows.Scan(shareTargets(&s, &original)...); err != nil {
			return nil, err
		}
		if original.Valid {
			id := original.Int64
			s.OriginalEntryID = &id
		}
		shares = append(shares, s)
	}

	return shares, rows.Err()
}

// DeleteByUUID revokes a share. Only the owner of the original entry may do so;
// shares whose original entry is gone can no longer be revoked and simply expire.
func (r *ShareRepository) DeleteByUUID(ctx context.Context, userID int64, uuid string) error {
	query := `DELETE s FROM shared_entries s
		JOIN vault_entries v ON v.id = s.original_entry_id
		WHERE s.uuid = ? AND v.user_id = ?`

	result, err := r.db.ExecContext(ctx, query, uuid, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrShareNotFound)
}

// PurgeExpired deletes every share whose expiry is not after now and returns how many went.
func (r *ShareRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM shared_entries WHERE expiry_date <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func shareTargets(s *model.SharedEntry, original *sql.NullInt64) []any {
	return []any{
		&s.ID, &s.UUID, &s.EncryptedTitle, &s.EncryptedUsername, &s.EncryptedEmail,
		&s.EncryptedPassword, &s.EncryptedURL, &s.ExpiryDate, original, &s.ShareSecretID, &s.KDFIterations, &s.CreatedAt,
	}
}
