package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/cbsr/biobank/internal/client/repositories/session"
	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
)

// Session is the cookie side of the transport.
type Session interface {
	SessionToken() string
	SetSessionToken(token string)
	ClearSession()
}

// UserService is the session service: it signs users in and out, keeps the
// current user, and edits user accounts.
type UserService interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Logout(ctx context.Context) error
	Resume(ctx context.Context) (*domain.User, error)
	RequestCurrentUser(ctx context.Context) (*domain.User, error)
	CurrentUser() *domain.User
	IsAuthenticated() bool
	SessionTimeout(ctx context.Context)
	PasswordReset(ctx context.Context, email string) error
	Register(ctx context.Context, name, email, password, avatarURL string) (*domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateName(ctx context.Context, u *domain.User, name string) (*domain.User, error)
	UpdateEmail(ctx context.Context, u *domain.User, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, u *domain.User, currentPassword, newPassword string) (*domain.User, error)
	UpdateAvatarURL(ctx context.Context, u *domain.User, avatarURL string) (*domain.User, error)
	Activate(ctx context.Context, u *domain.User) (*domain.User, error)
	Lock(ctx context.Context, u *domain.User) (*domain.User, error)
	Unlock(ctx context.Context, u *domain.User) (*domain.User, error)
}

type userService struct {
	api     domain.Transport
	session Session
	store   session.Repository
	logger  logging.Logger

	mu      sync.RWMutex
	current *domain.User
}

// NewUserService builds the session service. store may be nil, in which
// case nothing outlives the process.
func NewUserService(api domain.Transport, sess Session, store session.Repository, logger logging.Logger) UserService {
	return &userService{api: api, session: sess, store: store, logger: logger}
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if _, err := s.api.Post(ctx, "/login", map[string]string{"email": email, "password": password}); err != nil {
		return nil, err
	}
	user, err := s.authenticate(ctx)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, user)
	s.logger.Info(ctx, "signed in", "user", user.Name)
	return user, nil
}

// Logout ends the session on the server. Local state is cleared even if
// the server call fails.
func (s *userService) Logout(ctx context.Context) error {
	_, err := s.api.Post(ctx, "/logout", nil)
	s.SessionTimeout(ctx)
	return err
}

// Resume restores a session saved by an earlier run and checks it is still
// valid on the server. An invalid session is cleared and ErrUnauthorized is
// returned.
func (s *userService) Resume(ctx context.Context) (*domain.User, error) {
	if s.store == nil {
		return nil, common.ErrUnauthorized
	}
	token, err := s.store.Get(ctx, session.KeyToken)
	if err != nil {
		return nil, err
	}
	if len(token) == 0 {
		return nil, common.ErrUnauthorized
	}
	s.session.SetSessionToken(string(token))

	user, err := s.authenticate(ctx)
	if err != nil {
		s.logger.Info(ctx, "saved session no longer valid", "error", err)
		s.SessionTimeout(ctx)
		return nil, common.ErrUnauthorized
	}
	s.persist(ctx, user)
	return user, nil
}

// RequestCurrentUser returns the cached user or asks the server for it.
func (s *userService) RequestCurrentUser(ctx context.Context) (*domain.User, error) {
	if u := s.CurrentUser(); u != nil {
		return u, nil
	}
	return s.authenticate(ctx)
}

func (s *userService) CurrentUser() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *userService) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// SessionTimeout forgets the session cookie and the current user.
func (s *userService) SessionTimeout(ctx context.Context) {
	s.session.ClearSession()
	s.setCurrent(nil)
	if s.store != nil {
		if err := s.store.Clear(ctx); err != nil {
			s.logger.Warn(ctx, "failed to clear saved session", "error", err)
		}
	}
}

func (s *userService) PasswordReset(ctx context.Context, email string) error {
	_, err := s.api.Post(ctx, "/passreset", map[string]string{"email": email})
	return err
}

func (s *userService) Register(ctx context.Context, name, email, password, avatarURL string) (*domain.User, error) {
	cmd := map[string]any{"name": name, "email": email, "password": password}
	if avatarURL != "" {
		cmd["avatarUrl"] = avatarURL
	}
	user, err := domain.Submit(ctx, s.api, domain.Users, "/users", cmd)
	if err != nil {
		var te *domain.TransportError
		if errors.As(err, &te) && errors.Is(err, common.ErrForbidden) && strings.Contains(te.Message, "already registered") {
			return nil, domain.NewDomainError("email already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return domain.Fetch(ctx, s.api, domain.Users, endpoint("/users", id), nil)
}

func (s *userService) UpdateName(ctx context.Context, u *domain.User, name string) (*domain.User, error) {
	return s.update(ctx, u, "/users/name", map[string]any{"name": name})
}

func (s *userService) UpdateEmail(ctx context.Context, u *domain.User, email string) (*domain.User, error) {
	return s.update(ctx, u, "/users/email", map[string]any{"email": email})
}

func (s *userService) UpdatePassword(ctx context.Context, u *domain.User, currentPassword, newPassword string) (*domain.User, error) {
	if newPassword == "" {
		return nil, domain.NewDomainError("new password is required")
	}
	return s.update(ctx, u, "/users/password", map[string]any{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	})
}

func (s *userService) UpdateAvatarURL(ctx context.Context, u *domain.User, avatarURL string) (*domain.User, error) {
	extra := map[string]any{}
	if avatarURL != "" {
		extra["avatarUrl"] = avatarURL
	}
	return s.update(ctx, u, "/users/avatarurl", extra)
}

func (s *userService) Activate(ctx context.Context, u *domain.User) (*domain.User, error) {
	if !u.IsRegistered() {
		return nil, domain.NewDomainError("user is not registered")
	}
	return s.update(ctx, u, "/users/activate", nil)
}

func (s *userService) Lock(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.IsLocked() {
		return nil, domain.NewDomainError("already locked")
	}
	return s.update(ctx, u, "/users/lock", nil)
}

func (s *userService) Unlock(ctx context.Context, u *domain.User) (*domain.User, error) {
	if !u.IsLocked() {
		return nil, domain.NewDomainError("not locked")
	}
	return s.update(ctx, u, "/users/unlock", nil)
}

// update edits a user account. When the account is the signed-in one the
// cached current user is replaced too.
func (s *userService) update(ctx context.Context, u *domain.User, base string, extra map[string]any) (*domain.User, error) {
	updated, err := domain.Update(ctx, s.api, domain.Users, u, endpoint(base, u.ID), extra)
	if err != nil {
		return nil, err
	}
	if cur := s.CurrentUser(); cur != nil && cur.ID == updated.ID {
		s.persist(ctx, updated)
	}
	return updated, nil
}

func (s *userService) authenticate(ctx context.Context) (*domain.User, error) {
	user, err := domain.Fetch(ctx, s.api, domain.Users, "/authenticate", nil)
	if err != nil {
		return nil, err
	}
	s.setCurrent(user)
	return user, nil
}

func (s *userService) setCurrent(u *domain.User) {
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
}

// persist caches user and saves the session for the next run.
func (s *userService) persist(ctx context.Context, user *domain.User) {
	s.setCurrent(user)
	if s.store == nil {
		return
	}
	if token := s.session.SessionToken(); token != "" {
		if err := s.store.Set(ctx, session.KeyToken, []byte(token)); err != nil {
			s.logger.Warn(ctx, "failed to save session token", "error", err)
		}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.store.Set(ctx, session.KeyUser, raw); err != nil {
		s.logger.Warn(ctx, "failed to save current user", "error", err)
	}
}
