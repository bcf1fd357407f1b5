package mock

import (
	"context"
	"sync"
	"time"

	"github.com/fhuszti/videonft-ms-go/internal/model"
	"github.com/fhuszti/videonft-ms-go/internal/port"
	"github.com/fhuszti/videonft-ms-go/internal/uuid"
)

// SessionRepo keeps sessions in memory and enforces the generation and
// version checks the way the database does.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*model.Session

	GetErr    error
	CreateErr error
	UpdateErr error
	DeleteErr error
	ListErr   error
	ListOut   []uuid.UUID

	// OnUpdate runs after every successful update, with the stored copy.
	OnUpdate func(s *model.Session)

	GetCalled  bool
	Created    *model.Session
	Updates    []model.Session
	DeletedIDs []uuid.UUID
	ListCalled bool
	ListBefore time.Time
}

var _ port.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(sessions ...*model.Session) *SessionRepo {
	m := &SessionRepo{sessions: map[uuid.UUID]*model.Session{}}
	for _, s := range sessions {
		c := *s
		m.sessions[s.ID] = &c
	}
	return m
}

func (m *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	c := *s
	m.Created = &c
	if m.sessions == nil {
		m.sessions = map[uuid.UUID]*model.Session{}
	}
	m.sessions[s.ID] = &c
	return nil
}

func (m *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalled = true
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, port.ErrSessionNotFound
	}
	c := *s
	return &c, nil
}

func (m *SessionRepo) Update(ctx context.Context, s *model.Session, generation int) error {
	m.mu.Lock()
	if m.UpdateErr != nil {
		m.mu.Unlock()
		return m.UpdateErr
	}
	stored, ok := m.sessions[s.ID]
	if !ok {
		m.mu.Unlock()
		return port.ErrSessionNotFound
	}
	if stored.Generation != generation {
		m.mu.Unlock()
		return port.ErrSessionReset
	}
	if stored.Version != s.Version {
		m.mu.Unlock()
		return port.ErrSessionConflict
	}
	s.Version++
	c := *s
	m.sessions[s.ID] = &c
	m.Updates = append(m.Updates, c)
	hook := m.OnUpdate
	m.mu.Unlock()

	if hook != nil {
		hook(&c)
	}
	return nil
}

func (m *SessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedIDs = append(m.DeletedIDs, id)
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.sessions[id]; !ok {
		return port.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *SessionRepo) ListUntouchedBefore(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalled = true
	m.ListBefore = before
	return m.ListOut, m.ListErr
}

// Snapshot returns a copy of the stored session, or nil.
func (m *SessionRepo) Snapshot(id uuid.UUID) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

// States lists the state of every successful update, in order.
func (m *SessionRepo) States() []model.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.State, 0, len(m.Updates))
	for _, u := range m.Updates {
		if len(out) == 0 || out[len(out)-1] != u.State {
			out = append(out, u.State)
		}
	}
	return out
}

// Bump simulates a concurrent reset by moving the stored session to the next
// generation.
func (m *SessionRepo) Bump(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Generation++
		s.Version++
	}
}

// Touch simulates a concurrent write that leaves the generation alone.
func (m *SessionRepo) Touch(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Version++
	}
}
