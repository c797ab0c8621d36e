package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// ErrUnknownSession is returned for session ids that were never issued or have ended
var ErrUnknownSession = errors.New("unknown session")

// Session is one browser's authorization state
type Session struct {
	ID         string
	Credential *core.Credential
	CreatedAt  time.Time
}

// Manager issues session ids and holds the credential of each session
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewManager creates a new session manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Begin issues a new session id. The id doubles as the OAuth state value.
func (m *Manager) Begin() string {
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = &Session{ID: id, CreatedAt: time.Now()}
	m.mu.Unlock()

	m.logger.Debug("Session started", zap.String("session_id", id))
	return id
}

// Exists reports whether id was issued and has not ended
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[id]
	return ok
}

// SetCredential attaches the credential obtained for a session
func (m *Manager) SetCredential(id string, cred *core.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	s.Credential = cred
	return nil
}

// Credential returns the credential of a session, nil if the handshake has
// not completed
func (m *Manager) Credential(id string) (*core.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s.Credential, nil
}

// End forgets a session
func (m *Manager) End(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// PruneBefore ends sessions created before cutoff and returns how many ended
func (m *Manager) PruneBefore(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, id)
			pruned++
		}
	}
	if pruned > 0 {
		m.logger.Debug("Pruned sessions", zap.Int("count", pruned))
	}
	return pruned
}
