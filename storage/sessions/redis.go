package sessions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

const redisKeyPrefix = "session:"

type redisStore struct {
	session.Hub

	client *redis.Client
}

var _ session.Store = (*redisStore)(nil)

// NewRedisStore returns a Redis-backed session store. Expiry is enforced by
// Redis TTLs; expired sessions simply stop resolving (no destroy change is
// published for them).
func NewRedisStore(client *redis.Client) session.Store {
	return &redisStore{client: client}
}

func (s *redisStore) key(token string) string {
	return redisKeyPrefix + session.HashToken(token)
}

func (s *redisStore) Create(ctx context.Context, usr user.User, ttl time.Duration) (session.Session, error) {
	token, err := session.NewToken()
	if err != nil {
		return session.Session{}, err
	}
	now := time.Now().UTC()
	sess := session.Session{
		Token:     token,
		UserID:    usr.ID,
		Email:     usr.Email,
		Role:      usr.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "marshaling session")
	}
	if err := s.client.SetEx(ctx, s.key(token), payload, ttl).Err(); err != nil {
		return session.Session{}, session.NewError(session.CodeNetworkFailed, err)
	}

	s.Publish(session.Change{Token: token, Session: &sess})
	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, token string) (session.Session, error) {
	payload, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return session.Session{}, session.NewError(session.CodeUserNotFound)
		}
		return session.Session{}, session.NewError(session.CodeNetworkFailed, err)
	}

	var sess session.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return session.Session{}, errors.Wrap(err, "unmarshaling session")
	}
	sess.Token = token // the raw token is never persisted
	return sess, nil
}

func (s *redisStore) Destroy(ctx context.Context, token string) error {
	n, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return session.NewError(session.CodeNetworkFailed, err)
	}
	if n > 0 {
		s.Publish(session.Change{Token: token})
	}
	return nil
}
