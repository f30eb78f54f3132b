package services

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/cbsr/biobank/internal/common"
	"github.com/cbsr/biobank/internal/cryptox"
	"github.com/cbsr/biobank/internal/domain"
	"github.com/cbsr/biobank/internal/logging"
	"github.com/cbsr/biobank/internal/server/models"
	"github.com/cbsr/biobank/internal/server/repositories/repomanager"
)

const minPasswordLength = 6

// UserService manages accounts and their credentials. A user record and its
// credential are always written in one transaction.
type UserService struct {
	*store
}

func NewUserService(repos repomanager.RepositoryManager, logger logging.Logger, conflicts ConflictObserver) *UserService {
	return &UserService{store: newStore(repos, logger, conflicts)}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := load[domain.User](ctx, s.records(), models.KindUser, id)
	return u, errors.Wrap(err, "UserService.Get")
}

// Register creates a user in status registered.
func (s *UserService) Register(ctx context.Context, name, email, password, avatarURL string) (*domain.User, error) {
	return s.create(ctx, name, email, password, avatarURL, domain.UserRegistered)
}

// SeedAdmin creates an active user for email unless one exists already.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	_, err := s.credentials().GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return errors.Wrap(err, "UserService.SeedAdmin")
	}
	u, err := s.create(ctx, "Administrator", email, password, "", domain.UserActive)
	if err != nil {
		return errors.Wrap(err, "UserService.SeedAdmin")
	}
	s.logger.Info(ctx, "admin user seeded", "id", u.ID, "email", u.Email)
	return nil
}

func (s *UserService) create(ctx context.Context, name, email, password, avatarURL string, status domain.UserStatus) (*domain.User, error) {
	email = normalizeEmail(email)
	switch {
	case name == "":
		return nil, ruleError("name is required")
	case !validEmail(email):
		return nil, ruleError("invalid email: %s", email)
	case len(password) < minPasswordLength:
		return nil, ruleError("password must be at least %d characters", minPasswordLength)
	}

	u := &domain.User{Name: name, Email: email, AvatarURL: avatarURL, Status: status}
	err := s.inTx(ctx, func(ctx context.Context, tx *store) error {
		// The user record must not be written for a taken email.
		if _, err := tx.credentials().GetByEmail(ctx, email); err == nil {
			return common.ErrAlreadyExists
		} else if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		if err := insert(ctx, tx.records(), models.KindUser, u); err != nil {
			return err
		}
		salt, hash := cryptox.HashPassword(password)
		return tx.credentials().Create(ctx, &models.Credential{UserID: u.ID, Email: email, Salt: salt, Hash: hash})
	})
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil, errors.Wrap(common.ErrForbidden, "email already registered")
	}
	if err != nil {
		return nil, errors.Wrap(err, "UserService.create")
	}
	return u, nil
}

// Login checks the password of the user with email. Only active users may
// log in.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	cred, err := s.credentials().GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, errors.Wrap(err, "UserService.Login")
	}
	if !cryptox.VerifyPassword(password, cred.Salt, cred.Hash) {
		return nil, common.ErrUnauthorized
	}
	u, err := s.Get(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	switch u.Status {
	case domain.UserLocked:
		return nil, errors.Wrap(common.ErrForbidden, "user is locked")
	case domain.UserRegistered:
		return nil, errors.Wrap(common.ErrForbidden, "user is not active")
	}
	return u, nil
}

// Authenticate returns the user a session belongs to. A locked user's
// session is no longer valid.
func (s *UserService) Authenticate(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.Get(ctx, userID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive() {
		return nil, common.ErrUnauthorized
	}
	return u, nil
}

// PasswordReset replaces the password of the user with email by a random
// one. The new password is only logged; mail delivery is not part of the
// server.
func (s *UserService) PasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	cred, err := s.credentials().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return errors.Wrapf(common.ErrNotFound, "email address not registered: %s", email)
		}
		return errors.Wrap(err, "UserService.PasswordReset")
	}
	password, err := common.MakeRandHexString(8)
	if err != nil {
		return errors.Wrap(err, "UserService.PasswordReset")
	}
	cred.Salt, cred.Hash = cryptox.HashPassword(password)
	if err := s.credentials().Update(ctx, cred); err != nil {
		return errors.Wrap(err, "UserService.PasswordReset")
	}
	s.logger.Info(ctx, "password reset", "user", cred.UserID, "password", password)
	return nil
}

func (s *UserService) UpdateName(ctx context.Context, id string, expected int64, name string) (*domain.User, error) {
	if name == "" {
		return nil, ruleError("name is required")
	}
	u, err := mutate[domain.User](ctx, s.store, models.KindUser, id, expected, func(u *domain.User) error {
		u.Name = name
		return nil
	})
	return u, errors.Wrap(err, "UserService.UpdateName")
}

func (s *UserService) UpdateEmail(ctx context.Context, id string, expected int64, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if !validEmail(email) {
		return nil, ruleError("invalid email: %s", email)
	}
	if cred, err := s.credentials().GetByEmail(ctx, email); err == nil && cred.UserID != id {
		return nil, ruleError("email already registered: %s", email)
	}
	var u *domain.User
	err := s.inTx(ctx, func(ctx context.Context, tx *store) error {
		var err error
		u, err = mutate[domain.User](ctx, tx, models.KindUser, id, expected, func(u *domain.User) error {
			u.Email = email
			return nil
		})
		if err != nil {
			return err
		}
		cred, err := tx.credentials().GetByUserID(ctx, id)
		if err != nil {
			return err
		}
		cred.Email = email
		return tx.credentials().Update(ctx, cred)
	})
	if errors.Is(err, common.ErrAlreadyExists) {
		return nil, ruleError("email already registered: %s", email)
	}
	return u, errors.Wrap(err, "UserService.UpdateEmail")
}

// UpdatePassword changes the password when current matches. The user
// record's version is bumped too.
func (s *UserService) UpdatePassword(ctx context.Context, id string, expected int64, current, next string) (*domain.User, error) {
	if len(next) < minPasswordLength {
		return nil, ruleError("password must be at least %d characters", minPasswordLength)
	}
	var u *domain.User
	err := s.inTx(ctx, func(ctx context.Context, tx *store) error {
		cred, err := tx.credentials().GetByUserID(ctx, id)
		if err != nil {
			return err
		}
		if !cryptox.VerifyPassword(current, cred.Salt, cred.Hash) {
			return ruleError("invalid current password")
		}
		u, err = mutate[domain.User](ctx, tx, models.KindUser, id, expected, func(*domain.User) error { return nil })
		if err != nil {
			return err
		}
		cred.Salt, cred.Hash = cryptox.HashPassword(next)
		return tx.credentials().Update(ctx, cred)
	})
	return u, errors.Wrap(err, "UserService.UpdatePassword")
}

func (s *UserService) UpdateAvatarURL(ctx context.Context, id string, expected int64, url string) (*domain.User, error) {
	u, err := mutate[domain.User](ctx, s.store, models.KindUser, id, expected, func(u *domain.User) error {
		u.AvatarURL = url
		return nil
	})
	return u, errors.Wrap(err, "UserService.UpdateAvatarURL")
}

// ChangeState applies activate, lock or unlock.
func (s *UserService) ChangeState(ctx context.Context, id string, expected int64, action string) (*domain.User, error) {
	var change func(u *domain.User) error
	switch action {
	case "activate":
		change = func(u *domain.User) error {
			if !u.IsRegistered() {
				return ruleError("user is not registered")
			}
			u.Status = domain.UserActive
			return nil
		}
	case "lock":
		change = func(u *domain.User) error {
			if u.IsLocked() {
				return ruleError("user is already locked")
			}
			u.Status = domain.UserLocked
			return nil
		}
	case "unlock":
		change = func(u *domain.User) error {
			if !u.IsLocked() {
				return ruleError("user is not locked")
			}
			u.Status = domain.UserActive
			return nil
		}
	default:
		return nil, ruleError("invalid user state action: %s", action)
	}
	u, err := mutate[domain.User](ctx, s.store, models.KindUser, id, expected, change)
	return u, errors.Wrap(err, "UserService.ChangeState")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.Contains(email[at+1:], "@")
}
