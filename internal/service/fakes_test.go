package service

import (
	"context"
	"sync"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

// fakeDB backs the in-memory stores so that deleting an entry can orphan its shares
// the way the foreign key does.
type fakeDB struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]model.User
	entries map[int64]model.VaultEntry
	shares  map[string]model.SharedEntry
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:   make(map[int64]model.User),
		entries: make(map[int64]model.VaultEntry),
		shares:  make(map[string]model.SharedEntry),
	}
}

func (db *fakeDB) id() int64 {
	db.nextID++
	return db.nextID
}

type fakeUsers struct{ db *fakeDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, existing := range f.db.users {
		if existing.Username == u.Username {
			return repository.ErrDuplicateUsername
		}
	}
	u.ID = f.db.id()
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type fakeEntries struct{ db *fakeDB }

func (f fakeEntries) Create(_ context.Context, e *model.VaultEntry) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e.ID = f.db.id()
	f.db.entries[e.ID] = *e
	return nil
}

func (f fakeEntries) GetByID(_ context.Context, userID, id int64) (*model.VaultEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.entries[id]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEntryNotFound
	}
	return &e, nil
}

func (f fakeEntries) ListByUser(_ context.Context, userID int64) ([]model.VaultEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.VaultEntry
	for _, e := range f.db.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f fakeEntries) Update(_ context.Context, e *model.VaultEntry) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	existing, ok := f.db.entries[e.ID]
	if !ok || existing.UserID != e.UserID {
		return repository.ErrEntryNotFound
	}
	f.db.entries[e.ID] = *e
	return nil
}

func (f fakeEntries) Delete(_ context.Context, userID, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.entries[id]
	if !ok || e.UserID != userID {
		return repository.ErrEntryNotFound
	}
	delete(f.db.entries, id)
	for uuid, s := range f.db.shares {
		if s.OriginalEntryID != nil && *s.OriginalEntryID == id {
			s.OriginalEntryID = nil
			f.db.shares[uuid] = s
		}
	}
	return nil
}

func (f fakeEntries) ComplexityCounts(_ context.Context, userID int64) (map[int]int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	counts := make(map[int]int)
	for _, e := range f.db.entries {
		if e.UserID == userID {
			counts[e.Complexity]++
		}
	}
	return counts, nil
}

type fakeShares struct{ db *fakeDB }

func (f fakeShares) Create(_ context.Context, s *model.SharedEntry) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s.ID = f.db.id()
	s.CreatedAt = time.Now().UTC()
	f.db.shares[s.UUID] = *s
	return nil
}

func (f fakeShares) GetByUUID(_ context.Context, uuid string) (*model.SharedEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.shares[uuid]
	if !ok {
		return nil, repository.ErrShareNotFound
	}
	return &s, nil
}

func (f fakeShares) ListByEntry(_ context.Context, userID, entryID int64) ([]model.SharedEntry, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.SharedEntry
	for _, s := range f.db.shares {
		if s.OriginalEntryID == nil || *s.OriginalEntryID != entryID {
			continue
		}
		if e, ok := f.db.entries[entryID]; ok && e.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeShares) DeleteByUUID(_ context.Context, userID int64, uuid string) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.shares[uuid]
	if !ok || s.OriginalEntryID == nil {
		return repository.ErrShareNotFound
	}
	if e, ok := f.db.entries[*s.OriginalEntryID]; !ok || e.UserID != userID {
		return repository.ErrShareNotFound
	}
	delete(f.db.shares, uuid)
	return nil
}
