package session

import (
	"context"
	"sync"

	"github.com/utafrali/posterminal/internal/ident"
)

// Role is the authorization role of a terminal user.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
)

// User is the authenticated operator of the till.
type User struct {
	ID    ident.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  Role     `json:"role"`
}

// Session is the client-held proof of authentication.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// Active reports whether the session carries an access token.
func (s *Session) Active() bool {
	return s != nil && s.AccessToken != ""
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.User != nil {
		u := *s.User
		cp.User = &u
	}
	return &cp
}

// Store is the single owner of the persisted session. Get returns nil and no
// error when there is no session. Set replaces the whole session in one
// write, so readers never observe a half-updated token pair.
type Store interface {
	Get(ctx context.Context) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns a copy of the current session.
func (m *MemoryStore) Get(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Clone(), nil
}

// Set replaces the current session.
func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s.Clone()
	return nil
}

// Clear removes the current session.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
