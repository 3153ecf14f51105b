// Package session provides conversation history storage keyed by session ID,
// with per-session turn serialization.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatheragent/pkg/logx"
)

// ErrSessionNotFound is returned when a requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Message roles stored in session history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single entry in a session's conversation history.
//
//nolint:govet // struct alignment optimization not critical for this type.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ToolName  string    `json:"tool_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a history message with a fresh ID and timestamp.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// Session is a conversation identified by ID.
//
//nolint:govet // struct alignment optimization not critical for this type.
type Session struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSessionID generates a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Store is the session state storage interface. History is append-only:
// implementations never reorder or rewrite prior messages.
type Store interface {
	// GetOrCreate returns the session with the given ID, creating it if absent.
	GetOrCreate(ctx context.Context, id string) (*Session, error)
	// Append adds a message to the end of a session's history.
	Append(ctx context.Context, id string, msg Message) error
	// History returns a copy of the session's messages in append order.
	History(ctx context.Context, id string) ([]Message, error)
	// Evict removes a session and its history.
	Evict(ctx context.Context, id string) error
	// AcquireTurn blocks until the session's turn slot is free, enforcing at
	// most one in-flight turn per session.
	AcquireTurn(ctx context.Context, id string) error
	// ReleaseTurn frees the session's turn slot.
	ReleaseTurn(id string)
	// Close releases store resources.
	Close() error
}

// entry pairs a session with its turn lock. The turn channel has capacity 1;
// holding the token means a turn is in flight.
type entry struct {
	sess *Session
	turn chan struct{}
}

// MemoryStore is an in-memory Store with optional TTL-based eviction of idle
// sessions.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
	logger  *logx.Logger
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMemoryStore creates an in-memory session store. If ttl is positive, a
// background sweeper evicts sessions idle for longer than ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		logger:  logx.NewLogger("session"),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

func (s *MemoryStore) sweep() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *MemoryStore) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.sess.UpdatedAt.Before(cutoff) {
			// Skip sessions with a turn in flight. The token is held through
			// the delete and never released, so a waiter that captured the old
			// entry cannot start a turn against it.
			select {
			case e.turn <- struct{}{}:
			default:
				continue
			}
			delete(s.entries, id)
			s.logger.Debug("Evicted idle session %s", id)
		}
	}
}

func (s *MemoryStore) getOrCreateEntry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		now := time.Now().UTC()
		e = &entry{
			sess: &Session{ID: id, CreatedAt: now, UpdatedAt: now},
			turn: make(chan struct{}, 1),
		}
		s.entries[id] = e
		s.logger.Debug("Created session %s", id)
	}
	return e
}

// GetOrCreate implements Store.
func (s *MemoryStore) GetOrCreate(_ context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	e := s.getOrCreateEntry(id)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(e.sess), nil
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, id string, msg Message) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty")
	}
	e := s.getOrCreateEntry(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	e.sess.Messages = append(e.sess.Messages, msg)
	e.sess.UpdatedAt = time.Now().UTC()
	return nil
}

// History implements Store.
func (s *MemoryStore) History(_ context.Context, id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	out := make([]Message, len(e.sess.Messages))
	copy(out, e.sess.Messages)
	return out, nil
}

// Evict implements Store.
func (s *MemoryStore) Evict(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.entries, id)
	return nil
}

// AcquireTurn implements Store.
func (s *MemoryStore) AcquireTurn(ctx context.Context, id string) error {
	e := s.getOrCreateEntry(id)

	select {
	case e.turn <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for turn on session %s: %w", id, ctx.Err())
	}
}

// ReleaseTurn implements Store.
func (s *MemoryStore) ReleaseTurn(id string) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case <-e.turn:
	default:
		// Release without acquire is a no-op.
	}
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

func copySession(sess *Session) *Session {
	out := &Session{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Messages:  make([]Message, len(sess.Messages)),
	}
	copy(out.Messages, sess.Messages)
	return out
}
