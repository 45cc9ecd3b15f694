package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
)

var ErrEntryNotFound = errors.New("vault entry not found")

// VaultRepository handles vault entry persistence. Every read and write is
// scoped to the owning user so one user can never reach another's rows.
type VaultRepository struct {
	db *sql.DB
}

// NewVaultRepository creates a new VaultRepository.
func NewVaultRepository(db *sql.DB) *VaultRepository {
	return &VaultRepository{db: db}
}

const entryColumns = `id, user_id, title, username, email, password, url, complexity, created_at, updated_at`

// Create inserts a sealed entry and sets the generated ID.
func (r *VaultRepository) Create(ctx context.Context, entry *model.VaultEntry) error {
	query := `INSERT INTO vault_entries (user_id, title, username, email, password, url, complexity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		entry.UserID, entry.Title, entry.Username, entry.Email, entry.Password, entry.URL, entry.Complexity,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	entry.ID = id
	return nil
}

// GetByID retrieves one of the user's entries.
func (r *VaultRepository) GetByID(ctx context.Context, userID, id int64) (*model.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE id = ? AND user_id = ?`

	entry := &model.VaultEntry{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(scanTargets(entry)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	return entry, nil
}

// ListByUser retrieves all entries for a user, most recently updated first.
func (r *VaultRepository) ListByUser(ctx context.Context, userID int64) ([]model.VaultEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM vault_entries WHERE user_id = ? ORDER BY updated_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.VaultEntry
	for rows.Next() {
		var e model.VaultEntry
		if err := rows.Scan(scanTargets(&e)...); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Update rewrites the ciphertext fields and complexity of an existing entry.
func (r *VaultRepository) Update(ctx context.Context, entry *model.VaultEntry) error {
	query := `UPDATE vault_entries
		SET title = ?, username = ?, email = ?, password = ?, url = ?, complexity = ?
		WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		entry.Title, entry.Username, entry.Email, entry.Password, entry.URL, entry.Complexity,
		entry.ID, entry.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrEntryNotFound)
}

// Delete removes an entry. Shares snapshotted from it keep living with a NULL back-reference.
func (r *VaultRepository) Delete(ctx context.Context, userID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(result, ErrEntryNotFound)
}

// ComplexityCounts returns how many of the user's entries have each complexity score.
func (r *VaultRepository) ComplexityCounts(ctx context.Context, userID int64) (map[int]int, error) {
	query := `SELECT complexity, COUNT(*) FROM vault_entries WHERE user_id = ? GROUP BY complexity`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var complexity, n int
		if err := rows.Scan(&complexity, &n); err != nil {
			return nil, err
		}
		counts[complexity] = n
	}

	return counts, rows.Err()
}

func scanTargets(e *model.VaultEntry) []any {
	return []any{
		&e.ID, &e.UserID, &e.Title, &e.Username, &e.Email, &e.Password, &e.URL,
		&e.Complexity, &e.CreatedAt, &e.UpdatedAt,
	}
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
