package session

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

const (
	maxFailedAttempts  = 5
	failedAttemptsSpan = 15 * time.Minute
	minPasswordLen     = 6
)

// Authenticator is the credential boundary in front of the user store. It
// speaks in coded provider errors (see errors.go) so that callers can map
// them to the user-facing taxonomy.
type Authenticator struct {
	users user.Service

	mu       sync.Mutex
	failures map[string][]time.Time // email -> recent failed attempts
}

func NewAuthenticator(users user.Service) *Authenticator {
	return &Authenticator{
		users:    users,
		failures: make(map[string][]time.Time),
	}
}

// Authenticate checks credentials and returns the matching active user.
func (a *Authenticator) Authenticate(ctx context.Context, email, pwd string) (user.User, error) {
	email = core.CleanString(email, true /* lower */)
	if _, err := mail.ParseAddress(email); err != nil {
		return user.User{}, NewError(CodeInvalidEmail, err)
	}
	if a.throttled(email) {
		return user.User{}, NewError(CodeTooManyRequests)
	}

	usr, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, NewError(CodeUserNotFound)
		}
		if ctx.Err() != nil {
			return user.User{}, NewError(CodeNetworkFailed, err)
		}
		return user.User{}, errors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		a.recordFailure(email)
		return user.User{}, NewError(CodeWrongPassword, err)
	}
	if !usr.IsActive {
		return user.User{}, NewError(CodeUserNotFound)
	}
	a.clearFailures(email)
	return usr, nil
}

// SignUp creates a new identity. Same coded-error contract as Authenticate.
func (a *Authenticator) SignUp(ctx context.Context, nu user.NewUser) (user.User, error) {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if _, err := mail.ParseAddress(nu.Email); err != nil {
		return user.User{}, NewError(CodeInvalidEmail, err)
	}
	if len(nu.Password) < minPasswordLen {
		return user.User{}, NewError(CodeWeakPassword)
	}
	if core.CleanString(nu.Name) == "" {
		// no display name given; fall back to the email's local part
		nu.Name = strings.SplitN(nu.Email, "@", 2)[0]
	}

	if reg, err := a.users.CheckRegistration(ctx, nu.Email); err != nil {
		if ctx.Err() != nil {
			return user.User{}, NewError(CodeNetworkFailed, err)
		}
		return user.User{}, errors.Wrap(err, "checking registration")
	} else if reg.IsRegistered {
		return user.User{}, NewError(CodeEmailInUse)
	}

	usr, err := a.users.Create(ctx, nu)
	if err != nil {
		if ctx.Err() != nil {
			return user.User{}, NewError(CodeNetworkFailed, err)
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (a *Authenticator) throttled(email string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := time.Now().Add(-failedAttemptsSpan)
	recent := a.failures[email][:0]
	for _, t := range a.failures[email] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	a.failures[email] = recent
	return len(recent) >= maxFailedAttempts
}

func (a *Authenticator) recordFailure(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures[email] = append(a.failures[email], time.Now())
}

func (a *Authenticator) clearFailures(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.failures, email)
}
