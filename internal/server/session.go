package server

import (
	"errors"
	"net"
	"sync"
)

// SessionState tracks a connection through its registration handshake.
type SessionState int

const (
	StateConnected SessionState = iota
	StateRegistering
	StateRegistered
	StateClosed
)

var (
	ErrTagInUse  = errors.New("Tag already in use")
	ErrTagFormat = errors.New("Missing or invalid tag")
)

// Session is the per-connection state: the transport handle, the bound tag
// and the handshake state. The wire decoder lives in the read loop, not here.
type Session struct {
	conn net.Conn

	mu    sync.Mutex
	tag   string
	state SessionState
}

func NewSession(conn net.Conn) *Session {
	return &Session{conn: conn, state: StateConnected}
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Tag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tag
}

func (s *Session) setRegistered(tag string) {
	s.mu.Lock()
	s.tag = tag
	s.state = StateRegistered
	s.mu.Unlock()
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Close force-closes the transport. Safe to call more than once.
func (s *Session) Close() {
	s.setState(StateClosed)
	s.conn.Close()
}

// Registry maps bound tags to their sessions. No two simultaneously open
// sessions may share a tag; a tag becomes reusable the moment its session
// is released.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Bind registers the tag for the session, exactly once per connection.
func (r *Registry) Bind(tag string, s *Session) error {
	if tag == "" {
		return ErrTagFormat
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[tag]; exists {
		return ErrTagInUse
	}
	r.sessions[tag] = s
	s.setRegistered(tag)
	return nil
}

// Release drops the tag binding. Called on disconnect.
func (r *Registry) Release(tag string) {
	if tag == "" {
		return
	}
	r.mu.Lock()
	delete(r.sessions, tag)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Tags() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags := make([]string, 0, len(r.sessions))
	for tag := range r.sessions {
		tags = append(tags, tag)
	}
	return tags
}
