// Package session holds the authoritative state of simulation sessions.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/clinsim-backend/internal/model"
)

// Store keeps active sessions keyed by student and serializes every
// mutation of a single session.
type Store interface {
	// StartSession creates an ACTIVE session for the student. init runs
	// before the session becomes visible; if it fails nothing is stored.
	StartSession(studentID string, scenario *model.Scenario, startedAt time.Time, init func(*model.Session) error) (*model.SessionView, error)
	GetActiveSession(studentID string) (*model.SessionView, error)
	// Mutate applies fn under the session's lock. It fails with
	// ErrSessionNotFound when the student has no ACTIVE session.
	Mutate(studentID string, fn func(*model.Session) error) error
	// Finalize moves the session to a terminal status, runs hook under the
	// same lock and retires it to history.
	Finalize(studentID string, status model.SessionStatus, at time.Time, hook func(*model.Session)) (*model.SessionView, error)
	// Expire finalizes the student's session as TIMED_OUT, but only if it is
	// still the session identified by sessionID.
	Expire(studentID, sessionID string, at time.Time, hook func(*model.Session)) (*model.SessionView, error)
	Get(sessionID string) (*model.SessionView, error)
	History(studentID string) []*model.SessionView
	ActiveStudents() []string
}

type entry struct {
	mu      sync.Mutex
	session *model.Session
	done    bool
}

// MemoryStore is the in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	active   map[string]*entry
	finished map[string]*model.SessionView
	history  map[string][]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		active:   make(map[string]*entry),
		finished: make(map[string]*model.SessionView),
		history:  make(map[string][]string),
	}
}

// StartSession holds the index lock across the existence check and insert,
// so two concurrent starts for one student cannot both succeed.
func (m *MemoryStore) StartSession(studentID string, scenario *model.Scenario, startedAt time.Time, init func(*model.Session) error) (*model.SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.active[studentID]; exists {
		return nil, ErrSessionAlreadyActive
	}

	s := &model.Session{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		Scenario:      scenario,
		StartedAt:     startedAt,
		TimeRemaining: scenario.TimeLimit(),
		Status:        model.SessionStatusActive,
		Actions:       []model.ActionRecord{},
		Decisions:     []model.DecisionRecord{},
	}

	if init != nil {
		if err := init(s); err != nil {
			return nil, err
		}
	}

	m.active[studentID] = &entry{session: s}
	return s.View(), nil
}

// GetActiveSession returns a copy of the student's ACTIVE session.
func (m *MemoryStore) GetActiveSession(studentID string) (*model.SessionView, error) {
	var view *model.SessionView
	err := m.Mutate(studentID, func(s *model.Session) error {
		view = s.View()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Mutate applies fn to the student's ACTIVE session.
func (m *MemoryStore) Mutate(studentID string, fn func(*model.Session) error) error {
	e := m.lookup(studentID)
	if e == nil {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return ErrSessionNotFound
	}
	return fn(e.session)
}

// Finalize transitions the student's session to status. A TIMED_OUT session
// always ends with zero time remaining.
func (m *MemoryStore) Finalize(studentID string, status model.SessionStatus, at time.Time, hook func(*model.Session)) (*model.SessionView, error) {
	return m.finalize(studentID, "", status, at, hook)
}

// Expire times out the session only if sessionID is still the student's
// active session.
func (m *MemoryStore) Expire(studentID, sessionID string, at time.Time, hook func(*model.Session)) (*model.SessionView, error) {
	return m.finalize(studentID, sessionID, model.SessionStatusTimedOut, at, hook)
}

func (m *MemoryStore) finalize(studentID, sessionID string, status model.SessionStatus, at time.Time, hook func(*model.Session)) (*model.SessionView, error) {
	e := m.lookup(studentID)
	if e == nil {
		return nil, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done || (sessionID != "" && e.session.ID != sessionID) {
		return nil, ErrSessionNotFound
	}

	s := e.session
	s.RefreshTimeRemaining(at)
	if status == model.SessionStatusTimedOut {
		s.TimeRemaining = 0
	}
	s.Status = status
	finishedAt := at
	s.FinishedAt = &finishedAt

	if hook != nil {
		hook(s)
	}

	e.done = true
	view := s.View()

	m.mu.Lock()
	if m.active[studentID] == e {
		delete(m.active, studentID)
	}
	m.finished[s.ID] = view
	m.history[studentID] = append(m.history[studentID], s.ID)
	m.mu.Unlock()

	return copyView(view), nil
}

// Get returns a finished session by ID, or the ACTIVE one with that ID.
func (m *MemoryStore) Get(sessionID string) (*model.SessionView, error) {
	m.mu.RLock()
	if v, ok := m.finished[sessionID]; ok {
		m.mu.RUnlock()
		return copyView(v), nil
	}
	var candidate *entry
	for _, e := range m.active {
		if e.session.ID == sessionID {
			candidate = e
			break
		}
	}
	m.mu.RUnlock()

	if candidate == nil {
		return nil, ErrSessionNotFound
	}

	candidate.mu.Lock()
	done := candidate.done
	var view *model.SessionView
	if !done {
		view = candidate.session.View()
	}
	candidate.mu.Unlock()

	if done {
		// Finalized between the two lookups.
		return m.Get(sessionID)
	}
	return view, nil
}

// History returns the student's finished sessions, oldest first.
func (m *MemoryStore) History(studentID string) []*model.SessionView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.history[studentID]
	out := make([]*model.SessionView, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyView(m.finished[id]))
	}
	return out
}

// ActiveStudents lists students with an ACTIVE session, sorted.
func (m *MemoryStore) ActiveStudents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.active))
	for id := range m.active {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *MemoryStore) lookup(studentID string) *entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[studentID]
}

func copyView(v *model.SessionView) *model.SessionView {
	c := *v
	c.RequiredActions = append([]string(nil), v.RequiredActions...)
	c.CompletedActions = append([]string(nil), v.CompletedActions...)
	c.Actions = append([]model.ActionRecord(nil), v.Actions...)
	c.Decisions = append([]model.DecisionRecord(nil), v.Decisions...)
	c.Alerts = append([]model.Alert(nil), v.Alerts...)
	c.Report = v.Report.Clone()
	return &c
}
