package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureCipherMode(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		mode    string
		wantErr error
	}{
		{name: "first start records mode", stored: "gcm", mode: "gcm"},
		{name: "restart with same mode", stored: "cbc", mode: "cbc"},
		{name: "restart with changed mode", stored: "cbc", mode: "gcm", wantErr: ErrCipherModeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewSettingsRepository(db)

			mock.ExpectExec(`^INSERT\s+IGNORE\s+INTO\s+vault_settings\s*\(name,\s*value\)\s*VALUES\s*\(\?,\s*\?\)$`).
				WithArgs("cipher_mode", tt.mode).
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectQuery(`^SELECT\s+value\s+FROM\s+vault_settings\s+WHERE\s+name\s*=\s*\?$`).
				WithArgs("cipher_mode").
				WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(tt.stored))

			err := repo.EnsureCipherMode(context.Background(), tt.mode)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("EnsureCipherMode error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnsureCipherModeDBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSettingsRepository(db)

	dbErr := errors.New("db down")
	mock.ExpectExec(`INSERT\s+IGNORE\s+INTO\s+vault_settings`).WillReturnError(dbErr)

	if err := repo.EnsureCipherMode(context.Background(), "cbc"); !errors.Is(err, dbErr) {
		t.Fatalf("want db error, got %v", err)
	}
}
