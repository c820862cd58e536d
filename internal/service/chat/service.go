package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blockforge/craftchat/internal/model/chat"
)

var (
	ErrPlayerRequired  = errors.New("player is required")
	ErrPromptRequired  = errors.New("prompt is required")
	ErrSessionNotFound = errors.New("session not found")
)

// GenerateFunc produces the assistant reply for a prompt given the session's
// accumulated history.
type GenerateFunc func(ctx context.Context, history []chat.Message, prompt string) (string, error)

type state struct {
	mu       sync.Mutex
	session  chat.Session
	messages []chat.Message
}

// Service encapsulates per-player conversation state. Sessions idle longer
// than the TTL are discarded on next access or by Sweep.
type Service struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*state
}

// NewService bootstraps the in-memory session service with the given idle TTL.
func NewService(ttl time.Duration) *Service {
	return &Service{
		ttl:      ttl,
		sessions: make(map[string]*state),
	}
}

// Turn runs one exchange for a player: it snapshots the session history,
// invokes generate, and appends the (prompt, reply) pair on success. The
// session lock is held across the upstream call, so concurrent turns from
// the same player are applied in order. Failed generations leave the
// session untouched.
func (s *Service) Turn(ctx context.Context, player, prompt string, generate GenerateFunc) (chat.Message, int, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return chat.Message{}, 0, ErrPlayerRequired
	}
	if strings.TrimSpace(prompt) == "" {
		return chat.Message{}, 0, ErrPromptRequired
	}

	st, _ := s.acquire(player, true)
	st.mu.Lock()
	defer st.mu.Unlock()

	history := make([]chat.Message, len(st.messages))
	copy(history, st.messages)

	content, err := generate(ctx, history, prompt)
	if err != nil {
		return chat.Message{}, 0, err
	}

	now := time.Now().UTC()
	st.messages = append(st.messages,
		chat.Message{ID: uuid.NewString(), Player: player, Sender: chat.SenderUser, Content: prompt, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), Player: player, Sender: chat.SenderAssistant, Content: content, CreatedAt: now},
	)
	st.session.LastActive = now

	reply := st.messages[len(st.messages)-1]
	return reply, len(st.messages) / 2, nil
}

// GetSession retrieves a player's live session.
func (s *Service) GetSession(_ context.Context, player string) (chat.Session, error) {
	st, ok := s.acquire(player, false)
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session, nil
}

// Transcript returns a copy of the stored messages for the player.
func (s *Service) Transcript(_ context.Context, player string) ([]chat.Message, error) {
	st, ok := s.acquire(player, false)
	if !ok {
		return nil, ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	copied := make([]chat.Message, len(st.messages))
	copy(copied, st.messages)
	return copied, nil
}

// Reset discards a player's session so the next turn starts a fresh context.
func (s *Service) Reset(_ context.Context, player string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[player]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, player)
	return nil
}

// Sweep removes every idle-expired session and reports how many were dropped.
func (s *Service) Sweep(_ context.Context) int {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for player, st := range s.sessions {
		if s.expired(st, now) {
			delete(s.sessions, player)
			removed++
		}
	}
	return removed
}

// Len reports the number of live sessions.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// acquire returns the live state for player, replacing an expired session
// with a fresh one when create is set.
func (s *Service) acquire(player string, create bool) (*state, bool) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[player]
	if ok && s.expired(st, now) {
		delete(s.sessions, player)
		ok = false
	}
	if !ok {
		if !create {
			return nil, false
		}
		st = &state{
			session:  chat.Session{Player: player, CreatedAt: now, LastActive: now},
			messages: make([]chat.Message, 0, 16),
		}
		s.sessions[player] = st
	}
	return st, true
}

// expired reports whether the session sat idle past the TTL. A session whose
// lock is currently held is mid-turn and never considered expired.
func (s *Service) expired(st *state, now time.Time) bool {
	if !st.mu.TryLock() {
		return false
	}
	defer st.mu.Unlock()
	return now.Sub(st.session.LastActive) > s.ttl
}
