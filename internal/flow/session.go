package flow

import "sync"

// PhotoRef identifies an uploaded photo on the messaging transport.
// The engine never downloads photo content; dispatch resolves refs to bytes.
type PhotoRef struct {
	FileID string
}

// Session is the per-conversation interview record. A session is owned by the
// conversation it belongs to: the transport delivers one update at a time per
// chat, so only one goroutine ever mutates a given session.
type Session struct {
	// ID is the chat identity the session belongs to.
	ID int64

	// Current is the state the session is waiting on input for.
	Current State
	// History holds previously visited states, pushed once per completed
	// forward transition and popped once per backward transition.
	History []State

	// Fields maps field keys to the validated answer last accepted for them.
	// A key is present only while its originating state stands answered.
	Fields map[string]string

	// Branch is the selected service subtree. Set once; only a full reset
	// can clear it.
	Branch Branch

	// Category is the tank category the technician selected; AltA and AltB
	// are the remaining categories in the fixed declaration order.
	Category string
	AltA     string
	AltB     string

	// Photos accumulates attachment references during photo collection.
	// Cleared only on full session reset.
	Photos []PhotoRef
}

func newSession(id int64) *Session {
	return &Session{
		ID:      id,
		Current: StateCode,
		Fields:  make(map[string]string),
	}
}

// Field returns the stored answer for a key.
func (s *Session) Field(key string) (string, bool) {
	v, ok := s.Fields[key]
	return v, ok
}

// pushHistory records a completed forward transition.
func (s *Session) pushHistory(st State) {
	s.History = append(s.History, st)
}

// popHistory removes and returns the most recent history entry.
func (s *Session) popHistory() (State, bool) {
	if len(s.History) == 0 {
		return "", false
	}
	st := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	return st, true
}

// setCategory stores the selected tank category and derives the two
// alternates, preserving the fixed declaration order.
func (s *Session) setCategory(selected string) {
	s.Category = selected
	alts := make([]string, 0, 2)
	for _, c := range TankCategories {
		if c != selected {
			alts = append(alts, c)
		}
	}
	s.AltA, s.AltB = alts[0], alts[1]
}

// tierCategory returns the category label a tank tier refers to.
func (s *Session) tierCategory(tier Tier) string {
	switch tier {
	case TierAlt1:
		return s.AltA
	case TierAlt2:
		return s.AltB
	}
	return s.Category
}

// Store holds the active sessions keyed by chat identity. Distinct sessions
// may be processed concurrently; the map itself is the only shared state.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

// NewStore constructs an empty in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the session for a chat if one is active.
func (st *Store) Get(id int64) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Create replaces any existing session for the chat with a fresh one at the
// initial state and returns it.
func (st *Store) Create(id int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := newSession(id)
	st.sessions[id] = s
	return s
}

// Delete discards the session for a chat.
func (st *Store) Delete(id int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// InProgress reports whether the chat has an active interview.
func (st *Store) InProgress(id int64) bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	_, ok := st.sessions[id]
	return ok
}

// Len returns the number of active sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
