package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

const janitorInterval = time.Minute

type inmemStore struct {
	session.Hub

	mu    sync.Mutex
	table map[string]*session.Session // keyed by token hash

	nowFunc func() time.Time // mockable
}

var _ session.Store = (*inmemStore)(nil)

// NewInMemStore returns an in-process session store. Expired sessions are
// swept by a janitor goroutine which publishes destroy changes.
func NewInMemStore() session.Store {
	s := &inmemStore{
		table:   make(map[string]*session.Session),
		nowFunc: time.Now,
	}
	go s.janitor()
	return s
}

func (s *inmemStore) Create(_ context.Context, usr user.User, ttl time.Duration) (session.Session, error) {
	token, err := session.NewToken()
	if err != nil {
		return session.Session{}, err
	}
	now := s.nowFunc().UTC()
	sess := session.Session{
		Token:     token,
		UserID:    usr.ID,
		Email:     usr.Email,
		Role:      usr.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	s.table[session.HashToken(token)] = &sess
	s.mu.Unlock()

	s.Publish(session.Change{Token: token, Session: &sess})
	return sess, nil
}

func (s *inmemStore) Get(_ context.Context, token string) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.table[session.HashToken(token)]
	if !ok || sess.Expired(s.nowFunc().UTC()) {
		return session.Session{}, session.NewError(session.CodeUserNotFound)
	}
	return *sess, nil
}

func (s *inmemStore) Destroy(_ context.Context, token string) error {
	key := session.HashToken(token)

	s.mu.Lock()
	_, ok := s.table[key]
	delete(s.table, key)
	s.mu.Unlock()

	if ok {
		s.Publish(session.Change{Token: token})
	}
	return nil
}

func (s *inmemStore) janitor() {
	for range time.Tick(janitorInterval) {
		now := s.nowFunc().UTC()

		s.mu.Lock()
		var expired []*session.Session
		for key, sess := range s.table {
			if sess.Expired(now) {
				expired = append(expired, sess)
				delete(s.table, key)
			}
		}
		s.mu.Unlock()

		for _, sess := range expired {
			s.Publish(session.Change{Token: sess.Token})
		}
	}
}
