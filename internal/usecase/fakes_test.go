package usecase_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ErlanBelekov/user-accounts/internal/domain"
	"github.com/ErlanBelekov/user-accounts/internal/email"
	"github.com/google/uuid"
)

// ---- in-memory credential store ----

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	err   error // returned from every call when set
	clock time.Time
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User), clock: time.Now()}
}

func (m *memUsers) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

// public strips the hash like the postgres store does for gate lookups.
func public(u *domain.User) *domain.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

func (m *memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	cp := *u
	cp.ID = uuid.NewString()
	cp.CreatedAt = m.tick()
	cp.UpdatedAt = cp.CreatedAt
	m.byID[cp.ID] = &cp
	return public(&cp), nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return public(u), nil
}

func (m *memUsers) FindCredentials(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, addr string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, addr) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, public(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, upd domain.ProfileUpdate) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Photo != nil {
		u.Photo = *upd.Photo
	}
	u.UpdatedAt = m.tick()
	return public(u), nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = m.tick()
	return nil
}

func (m *memUsers) MarkVerified(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if u.IsVerified {
		return nil, domain.ErrAlreadyVerified
	}
	u.IsVerified = true
	return public(u), nil
}

func (m *memUsers) SetRole(_ context.Context, id string, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.byID, id)
	return nil
}

// ---- in-memory token store ----

type memTokens struct {
	mu   sync.Mutex
	rows map[string]*domain.EphemeralToken // key: user|purpose
}

func newMemTokens() *memTokens {
	return &memTokens{rows: make(map[string]*domain.EphemeralToken)}
}

func (m *memTokens) Replace(_ context.Context, t *domain.EphemeralToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.rows[t.UserID+"|"+string(t.Purpose)] = &cp
	return nil
}

func (m *memTokens) Claim(_ context.Context, hash string, p domain.TokenPurpose) (*domain.EphemeralToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, t := range m.rows {
		if t.TokenHash == hash && t.Purpose == p {
			delete(m.rows, k)
			return t, nil
		}
	}
	return nil, domain.ErrTokenInvalid
}

func (m *memTokens) DeleteExpired(_ context.Context, cutoff time.Time, _ int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, t := range m.rows {
		if t.ExpiresAt.Before(cutoff) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

// ---- hasher and mail ----

// plainHasher keeps tests fast; bcrypt itself is covered in package password.
type plainHasher struct {
	calls int
}

func (h *plainHasher) Hash(p string) (string, error) {
	h.calls++
	return "hashed:" + p, nil
}

func (h *plainHasher) Verify(p, hash string) bool { return hash == "hashed:"+p }

type captureSender struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (s *captureSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *captureSender) last() (email.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return email.Message{}, errors.New("no email sent")
	}
	return s.sent[len(s.sent)-1], nil
}
