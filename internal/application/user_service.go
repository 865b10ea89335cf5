package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

// UserService is the administrative side of account management.
type UserService struct {
	Users    repo.UserRepository
	Auth     *AuthService
	Profiles *ProfileResolver
	Logger   *logrus.Logger
}

func NewUserService(users repo.UserRepository, auth *AuthService, profiles *ProfileResolver, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Auth: auth, Profiles: profiles, Logger: logger}
}

// CreateUser lets an admin create an account with any role.
func (s *UserService) CreateUser(ctx context.Context, p policy.Principal, in RegisterInput) (*entity.UserProfile, error) {
	if err := policy.Authorize(p, policy.ActionUserCreate); err != nil {
		return nil, err
	}
	u, err := s.Auth.createAccount(ctx, in)
	if err != nil {
		return nil, err
	}
	prof := u.Profile()
	return &prof, nil
}

func (s *UserService) ListUsers(ctx context.Context, p policy.Principal) ([]entity.UserProfile, error) {
	if err := policy.Authorize(p, policy.ActionUserList); err != nil {
		return nil, err
	}
	users, err := s.Users.List(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	out := make([]entity.UserProfile, 0, len(users))
	for i := range users {
		out = append(out, users[i].Profile())
	}
	return out, nil
}

// ChangeRole is the only path through which a role changes after creation.
// Sessions issued before the change keep the old role until they expire.
func (s *UserService) ChangeRole(ctx context.Context, p policy.Principal, userID string, role entity.Role) (*entity.UserProfile, error) {
	if err := policy.Authorize(p, policy.ActionUserRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperror.Validation("invalid role", map[string]string{"role": "must be one of: admin, professor, student"})
	}
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, apperror.Internal(err)
	}
	if err := s.Users.Update(ctx, userID, entity.UserUpdate{Role: &role}); err != nil {
		return nil, apperror.Internal(err)
	}
	s.Profiles.Invalidate(ctx, userID)

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "role": role, "changed_by": p.UserID}).Info("role changed")
	}
	prof := u.Profile()
	return &prof, nil
}
