package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"neighborly/internal/domain"
	"neighborly/internal/models"

	"github.com/rs/zerolog"
)

// Auth failure reason codes, mapped from provider errors so callers can
// show a specific message per failure mode.
const (
	ReasonInvalidEmail      = "invalid-email"
	ReasonUserNotFound      = "user-not-found"
	ReasonWrongPassword     = "wrong-password"
	ReasonEmailAlreadyInUse = "email-already-in-use"
	ReasonWeakPassword      = "weak-password"
	ReasonUnknown           = "unknown"
)

// AuthError carries a stable reason code alongside the provider error.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth failed (%s): %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Listener is invoked on every auth state change. A nil user means
// signed out.
type Listener func(user *models.UserInfo)

// Manager wraps the identity provider and fans out auth state changes to
// registered listeners. There is one current user per manager.
type Manager struct {
	mu        sync.Mutex
	provider  domain.IdentityProvider
	repo      domain.StateRepository
	user      *models.UserInfo
	listeners map[int]Listener
	nextID    int
	logger    *zerolog.Logger
}

func NewManager(provider domain.IdentityProvider, repo domain.StateRepository, logger *zerolog.Logger) *Manager {
	return &Manager{
		provider:  provider,
		repo:      repo,
		listeners: make(map[int]Listener),
		logger:    logger,
	}
}

// CurrentUser returns the signed-in user or nil.
func (m *Manager) CurrentUser() *models.UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Subscribe registers a listener and immediately delivers the current
// state to it. The returned function removes the listener; calling it
// more than once is safe.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	current := m.user
	m.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// SignIn authenticates against the provider and, on success, records the
// session and notifies listeners.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.UserInfo, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &AuthError{Reason: ReasonInvalidEmail, Err: err}
	}

	user, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		aerr := classify(err)
		m.logger.Warn().Str("reason", aerr.Reason).Msg("sign-in failed")
		return nil, aerr
	}

	if m.repo != nil {
		state := &models.SessionState{UserID: user.UserID, SignedInAt: time.Now()}
		if err := m.repo.SetSession(ctx, state); err != nil {
			m.logger.Error().Err(err).Str("user_id", user.UserID).Msg("save session")
		}
	}

	m.setUser(user)
	m.logger.Info().Str("user_id", user.UserID).Msg("signed in")
	return user, nil
}

// SignUp creates an account, then signs the new user in.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName string) (*models.UserInfo, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, &AuthError{Reason: ReasonInvalidEmail, Err: err}
	}

	if _, err := m.provider.SignUp(ctx, email, password, displayName); err != nil {
		aerr := classify(err)
		m.logger.Warn().Str("reason", aerr.Reason).Msg("sign-up failed")
		return nil, aerr
	}
	return m.SignIn(ctx, email, password)
}

// SignOut clears the session and notifies listeners with a nil user.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	user := m.user
	m.mu.Unlock()
	if user == nil {
		return nil
	}

	if m.repo != nil {
		if err := m.repo.ClearSession(ctx, user.UserID); err != nil {
			m.logger.Error().Err(err).Str("user_id", user.UserID).Msg("clear session")
		}
	}
	m.setUser(nil)
	m.logger.Info().Str("user_id", user.UserID).Msg("signed out")
	return nil
}

func (m *Manager) setUser(user *models.UserInfo) {
	m.mu.Lock()
	m.user = user
	fns := make([]Listener, 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// Provider error sentinels. Concrete identity providers return these (or
// wrap them) so classify can map failures to reason codes.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")
	ErrEmailAlreadyInUse = errors.New("email already in use")
	ErrWeakPassword      = errors.New("weak password")
)

func classify(err error) *AuthError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return &AuthError{Reason: ReasonUserNotFound, Err: err}
	case errors.Is(err, ErrWrongPassword):
		return &AuthError{Reason: ReasonWrongPassword, Err: err}
	case errors.Is(err, ErrEmailAlreadyInUse):
		return &AuthError{Reason: ReasonEmailAlreadyInUse, Err: err}
	case errors.Is(err, ErrWeakPassword):
		return &AuthError{Reason: ReasonWeakPassword, Err: err}
	default:
		return &AuthError{Reason: ReasonUnknown, Err: err}
	}
}
