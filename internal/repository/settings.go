package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const settingCipherMode = "cipher_mode"

var ErrCipherModeMismatch = errors.New("configured cipher mode does not match the one this database was created with")

// SettingsRepository stores parameters fixed for the lifetime of a database.
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// EnsureCipherMode records mode on first use and afterwards only checks it.
// Every stored ciphertext was written under the recorded mode, so a different
// one is refused with ErrCipherModeMismatch.
func (r *SettingsRepository) EnsureCipherMode(ctx context.Context, mode string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO vault_settings (name, value) VALUES (?, ?)`, settingCipherMode, mode)
	if err != nil {
		return err
	}

	var stored string
	err = r.db.QueryRowContext(ctx,
		`SELECT value FROM vault_settings WHERE name = ?`, settingCipherMode).Scan(&stored)
	if err != nil {
		return err
	}

	if stored != mode {
		return fmt.Errorf("%w: stored %q, configured %q", ErrCipherModeMismatch, stored, mode)
	}
	return nil
}
