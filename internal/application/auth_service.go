package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// AuthService is the Authenticator: it owns credential checks and session tokens.
type AuthService struct {
	Users             repo.UserRepository
	JWT               *helpers.JWTManager
	Hasher            *helpers.PasswordHasher
	Notifier          AccountNotifier
	Logger            *logrus.Logger
	MinPasswordLength int
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, notifier AccountNotifier, logger *logrus.Logger, minPasswordLength int) *AuthService {
	return &AuthService{
		Users:             users,
		JWT:               jwt,
		Hasher:            hasher,
		Notifier:          notifier,
		Logger:            logger,
		MinPasswordLength: minPasswordLength,
	}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      entity.UserProfile `json:"user"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// Register creates a self-service account and signs the caller in.
// Only student and professor accounts can be self-registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Role == "" {
		in.Role = entity.RoleStudent
	}
	if in.Role == entity.RoleAdmin {
		return nil, apperror.Validation("admin accounts can only be created by an administrator", map[string]string{"role": "must be one of: student, professor"})
	}
	u, err := s.createAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

// createAccount validates input, enforces the unique email and stores a salted hash.
func (s *AuthService) createAccount(ctx context.Context, in RegisterInput) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	email := entity.NormalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperror.Validation("name, email and password are required", nil)
	}
	if !in.Role.Valid() {
		return nil, apperror.Validation("invalid role", map[string]string{"role": "must be one of: admin, professor, student"})
	}
	if err := s.checkStrength(in.Password); err != nil {
		return nil, err
	}

	existing, err := s.Users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateEmail
	}

	hash, err := s.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	u := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, apperror.ErrDuplicateEmail
		}
		return nil, apperror.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("account created")
	}
	return u, nil
}

// Login fails with the same InvalidCredentials for an unknown email and for a
// wrong password, and spends one bcrypt comparison in both cases.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Internal(err)
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	ok, err := s.Hasher.Compare(ctx, hash, password)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if u == nil || !ok {
		return nil, apperror.ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.Generate(u.ID, string(u.Role))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, apperror.Internal(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u.Profile()}, nil
}

// Verify turns a bearer token into a principal without touching the store.
func (s *AuthService) Verify(token string) (policy.Principal, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return policy.Principal{}, apperror.Wrap(apperror.KindUnauthenticated, "invalid or expired token", err)
	}
	role := entity.Role(claims.Role)
	if !role.Valid() {
		return policy.Principal{}, apperror.ErrUnauthenticated
	}
	return policy.Principal{UserID: claims.UserID, Role: role}, nil
}

// Me returns the caller's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*entity.UserProfile, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err)
	}
	p := u.Profile()
	return &p, nil
}

// ChangePassword checks the old password before looking at the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.NotFound("user")
		}
		return apperror.Internal(err)
	}
	ok, err := s.Hasher.Compare(ctx, u.PasswordHash, oldPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.New(apperror.KindInvalidCredentials, "incorrect old password")
	}
	if err := s.checkStrength(newPassword); err != nil {
		return err
	}
	hash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.Users.Update(ctx, u.ID, entity.UserUpdate{PasswordHash: &hash}); err != nil {
		return apperror.Internal(err)
	}
	notifyPasswordChanged(ctx, s.Notifier, s.Logger, u)
	return nil
}

func (s *AuthService) checkStrength(password string) error {
	if len(password) < s.MinPasswordLength {
		return apperror.New(apperror.KindWeakPassword, fmt.Sprintf("password must be at least %d characters long", s.MinPasswordLength))
	}
	return nil
}

func notifyPasswordChanged(ctx context.Context, n AccountNotifier, logger *logrus.Logger, u *entity.User) {
	if n == nil {
		return
	}
	if err := n.PasswordChanged(ctx, u); err != nil && logger != nil {
		logger.WithError(err).WithField("user_id", u.ID).Warn("password change notification failed")
	}
}
