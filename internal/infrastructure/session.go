package infrastructure

import (
	"sync"
	"time"
)

// FlowState is the current step of a user's order form.
type FlowState int

const (
	StateIdle FlowState = iota
	StateBotType
	StateFunctionality
	StateAudience
	StateBudget
	StatePreferences
)

// OrderSession holds the fields collected so far for one user's order.
// It is transient: lost state means the user restarts the form.
type OrderSession struct {
	ChatID         int64
	State          FlowState
	BotType        string
	Functionality  string
	TargetAudience string
	Preferences    string
	Budget         float64
	StartedAt      time.Time
}

// SessionManager keys in-flight order sessions by chat id. Lifecycle is
// caller-controlled: the flow creates a session on start and clears it on
// cancel or commit.
type SessionManager struct {
	sessions map[int64]*OrderSession
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[int64]*OrderSession),
	}
}

// Get returns the session for chatID, or nil if none is in flight.
func (sm *SessionManager) Get(chatID int64) *OrderSession {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[chatID]
}

// Start creates a fresh session in StateBotType, replacing any previous one.
func (sm *SessionManager) Start(chatID int64) *OrderSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session := &OrderSession{
		ChatID:    chatID,
		State:     StateBotType,
		StartedAt: time.Now(),
	}
	sm.sessions[chatID] = session
	return session
}

// Clear discards the session for chatID, if any.
func (sm *SessionManager) Clear(chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, chatID)
}

// Active reports whether chatID has an order form in flight.
func (sm *SessionManager) Active(chatID int64) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[chatID]
	return ok && s.State != StateIdle
}
