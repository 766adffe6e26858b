package session

import (
	"context"
	"sync"
	"time"

	"github.com/darasahq/darasa/core/user"
)

// Session is a live authenticated identity. Token is the opaque secret handed
// to the client; stores only ever persist its hash.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
	ExpiresAt time.Time `json:"expires_at"` // UTC
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Change is a session-change notification. A nil Session means the session
// identified by Token was destroyed.
type Change struct {
	Token   string
	Session *Session
}

type (
	// Store issues and resolves sessions. Implementations must publish a
	// Change on every Create and Destroy, in the order they happen. Expiry
	// is weaker: stores that delegate it to a backend TTL (see the Redis
	// store) publish no Change when a session lapses, so callers must treat
	// a failing Get as authoritative rather than wait for a notification.
	Store interface {
		Create(ctx context.Context, usr user.User, ttl time.Duration) (Session, error)
		Get(ctx context.Context, token string) (Session, error)
		Destroy(ctx context.Context, token string) error
		Subscribe() <-chan Change
	}
)

// Hub fans session changes out to subscribers. Store implementations embed it
// to satisfy Subscribe.
type Hub struct {
	mu   sync.Mutex
	subs []chan Change
}

func (h *Hub) Subscribe() <-chan Change {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, 16)
	h.subs = append(h.subs, ch)
	return ch
}

// Publish delivers `c` to every subscriber. Delivery blocks so that arrival
// order is preserved per subscriber.
func (h *Hub) Publish(c Change) {
	h.mu.Lock()
	subs := make([]chan Change, len(h.subs))
	copy(subs, h.subs)
	h.mu.Unlock()

	for _, ch := range subs {
		ch <- c
	}
}
