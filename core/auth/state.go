package auth

import (
	"context"
	"sync"
	"time"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/profile"
	"github.com/darasahq/darasa/core/session"
	"github.com/darasahq/darasa/core/user"
)

// State is the derived authentication state: who is logged in and with what
// role. Profile may stay nil after a failed (non-fatal) profile fetch;
// consumers must treat a nil profile as "limited/default" rather than crash.
type State struct {
	User    *user.User
	Profile *profile.Profile
	Loading bool
	Err     string
}

// Result is the outcome of a login or signup attempt.
type Result struct {
	Success bool
	User    *user.User
	Session *session.Session
	Error   string
}

type (
	Options struct {
		Sessions session.Store
		Authn    *session.Authenticator
		Users    user.Service
		Profiles profile.Service
		KV       KeyValue
		Logger   core.Logger

		// CallTimeout bounds blocking store calls; zero means
		// core.Conf.AuthCallTimeout. Expiry surfaces as a network failure.
		CallTimeout time.Duration
		SessionTTL  time.Duration
	}

	// Manager is the single writer of State. All mutations go through its
	// Login/Signup/Logout methods; readers subscribe or poll State().
	//
	// Each sign-in bumps a generation counter; the asynchronous profile
	// fetch is tagged with the generation it was issued for and its result
	// is discarded if a later change (e.g. a sign-out) got there first.
	Manager struct {
		sessions session.Store
		authn    *session.Authenticator
		users    user.Service
		profiles profile.Service
		kv       KeyValue
		log      core.Logger
		timeout  time.Duration
		ttl      time.Duration

		mu    sync.Mutex
		state State
		gen   uint64
		token string // current session token; "" when signed out
		subs  []chan State

		busy  chan struct{} // size-1 semaphore; auth mutations are not reentrant
		start sync.Once
	}
)

var errBusy = "another authentication operation is in progress"

func NewManager(opts Options) *Manager {
	timeout := opts.CallTimeout
	if timeout == 0 {
		timeout = core.Conf.AuthCallTimeout
	}
	ttl := opts.SessionTTL
	if ttl == 0 {
		ttl = core.Conf.Server.SessionExpirationDelta
	}
	return &Manager{
		sessions: opts.Sessions,
		authn:    opts.Authn,
		users:    opts.Users,
		profiles: opts.Profiles,
		kv:       opts.KV,
		log:      opts.Logger,
		timeout:  timeout,
		ttl:      ttl,
		state:    State{Loading: true}, // checking until the first change lands
		busy:     make(chan struct{}, 1),
	}
}

// Start subscribes to session-change notifications. Called once per process
// lifetime; later calls are no-ops.
func (m *Manager) Start() {
	m.start.Do(func() {
		ch := m.sessions.Subscribe()
		go m.consume(ch)
	})
}

// consume processes changes strictly in arrival order. Changes the manager
// itself initiated are already applied by the time they arrive here and are
// recognized by token; everything else (expiry, another writer) is applied.
func (m *Manager) consume(ch <-chan session.Change) {
	for change := range ch {
		m.mu.Lock()
		switch {
		case change.Session == nil:
			if change.Token != "" && change.Token == m.token {
				m.signOutLocked()
			}
		case change.Session.Token == m.token:
			// refresh of the current session; nothing to do
		case m.token == "" && m.state.User == nil && !m.state.Loading:
			// externally created session while signed out: adopt it
			s := *change.Session
			usr := user.User{ID: s.UserID, Email: s.Email, Role: s.Role}
			gen := m.signInLocked(usr, s)
			go m.fetchProfile(gen, usr.ID)
		}
		m.mu.Unlock()
	}
}

// Login delegates the credential check to the session store, mirrors
// role/email for the edge gate, and kicks off the profile fetch.
func (m *Manager) Login(ctx context.Context, email, password string) Result {
	if !m.acquire() {
		return Result{Error: errBusy}
	}
	defer m.release()

	ctx, cancel := m.opContext(ctx)
	defer cancel()

	usr, err := m.authn.Authenticate(ctx, email, password)
	if err != nil {
		return m.fail(err)
	}
	return m.establish(ctx, usr)
}

// Signup creates a new identity plus its profile record, then proceeds like
// Login. The composite display label is decoded at this boundary; an explicit
// role wins over the label-derived one.
func (m *Manager) Signup(ctx context.Context, email, password string, role user.Role, displayLabel string) Result {
	if !m.acquire() {
		return Result{Error: errBusy}
	}
	defer m.release()

	ctx, cancel := m.opContext(ctx)
	defer cancel()

	name, labelRole := user.ParseLabel(displayLabel)
	if role == "" {
		role = labelRole
	}
	usr, err := m.authn.SignUp(ctx, user.NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return m.fail(err)
	}

	np := profile.NewProfile{UserID: usr.ID, Role: usr.Role}
	if _, err := m.profiles.Create(ctx, np); err != nil {
		// tolerated: the user stays authenticated with a nil profile
		m.log.Warn("creating profile at signup", err, usr)
	}
	return m.establish(ctx, usr)
}

// Logout destroys the session and clears the mirrors. It is idempotent and
// never fails, even when the profile fetch for the session had failed or is
// still in flight.
func (m *Manager) Logout(ctx context.Context) {
	if !m.acquire() {
		return
	}
	defer m.release()

	m.mu.Lock()
	token := m.token
	m.signOutLocked()
	m.mu.Unlock()

	if token == "" {
		return
	}
	ctx, cancel := m.opContext(ctx)
	defer cancel()
	if err := m.sessions.Destroy(ctx, token); err != nil {
		m.log.Warn("destroying session", err)
	}
}

// CheckRegistration reports whether an identity already exists for an email,
// to prevent duplicate-account creation before signup.
func (m *Manager) CheckRegistration(ctx context.Context, email string) (user.Registration, error) {
	ctx, cancel := m.opContext(ctx)
	defer cancel()

	reg, err := m.users.CheckRegistration(ctx, email)
	if err != nil {
		return user.Registration{}, Translate(err)
	}
	return reg, nil
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel receiving state snapshots. Slow consumers may
// miss intermediate snapshots but always receive the latest one eventually.
func (m *Manager) Subscribe() <-chan State {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan State, 16)
	ch <- m.state
	m.subs = append(m.subs, ch)
	return ch
}

// internals

func (m *Manager) establish(ctx context.Context, usr user.User) Result {
	s, err := m.sessions.Create(ctx, usr, m.ttl)
	if err != nil {
		return m.fail(err)
	}

	m.mu.Lock()
	gen := m.signInLocked(usr, s)
	m.mu.Unlock()
	go m.fetchProfile(gen, usr.ID)

	return Result{Success: true, User: &usr, Session: &s}
}

func (m *Manager) fail(err error) Result {
	f := Translate(err)

	m.mu.Lock()
	m.state.Err = f.Message
	m.notifyLocked()
	m.mu.Unlock()

	return Result{Error: f.Message}
}

// signInLocked applies the signed-in state and returns the new generation.
func (m *Manager) signInLocked(usr user.User, s session.Session) uint64 {
	m.gen++
	m.token = s.Token
	m.state = State{User: &usr, Loading: true}
	m.kv.Set(KeyUserType, string(usr.Role))
	m.kv.Set(KeyUserEmail, usr.Email)
	m.notifyLocked()
	return m.gen
}

func (m *Manager) signOutLocked() {
	m.gen++
	m.token = ""
	m.state = State{}
	m.kv.Delete(KeyUserType)
	m.kv.Delete(KeyUserEmail)
	m.notifyLocked()
}

// fetchProfile is best-effort: failures are logged, not fatal. A result from
// a stale generation is dropped so it can never overwrite a later sign-out.
func (m *Manager) fetchProfile(gen uint64, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	prof, err := m.profiles.GetByUserID(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return // a later change won; drop this result
	}
	if err != nil {
		m.log.Warn("fetching profile", err)
		m.state.Loading = false
		m.notifyLocked()
		return
	}
	m.state.Profile = &prof
	m.state.Loading = false
	m.notifyLocked()
}

func (m *Manager) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) acquire() bool {
	select {
	case m.busy <- struct{}{}:
		return true
	default:
		return false
	}
}

func (m *Manager) release() {
	<-m.busy
}

func (m *Manager) notifyLocked() {
	for _, ch := range m.subs {
		// drop the oldest snapshot if the subscriber is lagging
		select {
		case ch <- m.state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- m.state:
			default:
			}
		}
	}
}
