package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/codec"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/middleware"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/service"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/session"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/sharing"
)

func TestHandleGenerate(t *testing.T) {
	h := NewGeneratorHandler(service.NewGeneratorService())

	tests := []struct {
		name  string
		body  string
		want  int
		count int
	}{
		{name: "empty body uses defaults", body: "", want: http.StatusOK, count: 1},
		{name: "batch", body: `{"length":12,"count":5}`, want: http.StatusOK, count: 5},
		{name: "too short", body: `{"length":4}`, want: http.StatusBadRequest},
		{name: "batch too large", body: `{"count":1000}`, want: http.StatusBadRequest},
		{name: "malformed", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleGenerate(rec, req)

			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.want != http.StatusOK {
				return
			}
			var resp model.GenerateResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Len(t, resp.Passwords, tt.count)
		})
	}
}

func TestDecodeJSONTooLarge(t *testing.T) {
	body := `{"title":"` + strings.Repeat("a", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()

	var v model.VaultEntryRequest
	assert.False(t, decodeJSON(rec, req, 1<<20, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAuthenticatedHandlersRequirePrincipal(t *testing.T) {
	vault := NewVaultHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vault", nil)
	rec := httptest.NewRecorder()

	vault.HandleListEntries(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIDParam(t *testing.T) {
	for raw, valid := range map[string]bool{"1": true, "42": true, "0": false, "-3": false, "abc": false} {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("entry_id", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

		_, err := idParam(req, "entry_id")
		assert.Equal(t, valid, err == nil, "id %q", raw)
	}
}

func TestHandleRedeemShare(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	c := codec.New(crypto.CBCCipher{})
	kdf := crypto.NewKeyDeriver(crypto.DefaultKDFIterations)
	engine := sharing.NewEngine(c, kdf)
	keys := session.NewStore(time.Hour)

	ownerKey := make([]byte, crypto.KeySize)
	sealed, err := c.Seal(codec.Fields{Title: "GitHub", Username: "alice", Email: "a@example.com", Password: "Tr0ub4dor&3"}, ownerKey)
	require.NoError(t, err)
	created, err := engine.CreateShare(11, sealed, ownerKey, 24)
	require.NoError(t, err)

	svc := service.NewShareService(repository.NewVaultRepository(db), repository.NewShareRepository(db), keys, engine, "http://localhost:8080", 168)
	h := NewShareHandler(svc)

	r := chi.NewRouter()
	r.Get("/share/{uuid}/{token}", h.HandleRedeemShare)

	columns := []string{
		"id", "uuid", "encrypted_title", "encrypted_username", "encrypted_email", "encrypted_password",
		"encrypted_url", "expiry_date", "original_entry_id", "share_secret_id", "kdf_iterations", "created_at",
	}
	s := created.Share
	mock.ExpectQuery(`FROM\s+shared_entries\s+WHERE\s+uuid`).
		WithArgs(s.UUID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			int64(1), s.UUID, s.Sealed.Title, s.Sealed.Username, s.Sealed.Email, s.Sealed.Password,
			s.Sealed.URL, s.ExpiresAt, int64(11), s.SecretID, s.KDFIterations, time.Now(),
		))
	mock.ExpectQuery(`FROM\s+shared_entries\s+WHERE\s+uuid`).
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows(columns))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/"+s.UUID+"/"+created.URLToken, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp model.SharedEntryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Tr0ub4dor&3", resp.Password)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/share/unknown/"+created.URLToken, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "share link invalid or expired")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleCreateShareUnreadableEntry(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	const secret = "handler-secret"
	keys := session.NewStore(time.Hour)
	sid, err := keys.Create(5, make([]byte, crypto.KeySize))
	require.NoError(t, err)
	token, err := crypto.GenerateToken(5, sid, secret, time.Hour)
	require.NoError(t, err)

	engine := sharing.NewEngine(codec.New(crypto.CBCCipher{}), crypto.NewKeyDeriver(crypto.DefaultKDFIterations))
	svc := service.NewShareService(repository.NewVaultRepository(db), repository.NewShareRepository(db), keys, engine, "http://localhost:8080", 168)
	h := NewShareHandler(svc)

	r := chi.NewRouter()
	r.With(middleware.JWTAuth(secret, keys)).Post("/api/v1/vault/{entry_id}/share", h.HandleCreateShare)

	now := time.Now()
	mock.ExpectQuery(`FROM\s+vault_entries\s+WHERE\s+id\s*=\s*\?\s+AND\s+user_id\s*=\s*\?`).
		WithArgs(int64(9), int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "username", "email", "password", "url", "complexity", "created_at", "updated_at",
		}).AddRow(int64(9), int64(5), "%%", "%%", "%%", "%%", "", 2, now, now))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/vault/9/share", strings.NewReader(`{"validity_hours":24}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
