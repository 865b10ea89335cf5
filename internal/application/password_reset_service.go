package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// PasswordResetService issues and redeems single-use, time-bound reset tokens.
// Only the SHA-256 of a token is stored; single use is enforced by clearing the
// stored pair in the same write that replaces the password.
type PasswordResetService struct {
	Users             repo.UserRepository
	Hasher            *helpers.PasswordHasher
	Notifier          AccountNotifier
	Logger            *logrus.Logger
	TTL               time.Duration
	MinPasswordLength int
	// AsyncDelivery hands the token to the notifier off the request path, so a
	// known address answers as fast as an unknown one. Wait drains pending sends.
	AsyncDelivery bool

	Now func() time.Time

	inflight sync.WaitGroup
}

// deliveryTimeout bounds a detached delivery.
const deliveryTimeout = 15 * time.Second

func NewPasswordResetService(users repo.UserRepository, hasher *helpers.PasswordHasher, notifier AccountNotifier, logger *logrus.Logger, ttl time.Duration, minPasswordLength int) *PasswordResetService {
	return &PasswordResetService{
		Users:             users,
		Hasher:            hasher,
		Notifier:          notifier,
		Logger:            logger,
		TTL:               ttl,
		MinPasswordLength: minPasswordLength,
		Now:               time.Now,
	}
}

// RequestReset never reveals whether email belongs to an account: unknown
// addresses and delivery failures both end in the same nil result.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return apperror.Validation("email is required", map[string]string{"email": "is required"})
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, apperror.ErrNotFound) {
		if s.Logger != nil {
			s.Logger.Debug("password reset requested for unknown email")
		}
		return nil
	}
	if err != nil {
		return apperror.Internal(err)
	}

	plain, hash, err := helpers.GenerateResetToken()
	if err != nil {
		return apperror.Internal(err)
	}
	expiresAt := s.Now().Add(s.TTL)
	if err := s.Users.Update(ctx, u.ID, entity.UserUpdate{Reset: &entity.ResetToken{Hash: hash, ExpiresAt: expiresAt}}); err != nil {
		return apperror.Internal(err)
	}

	if s.AsyncDelivery {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
			defer cancel()
			s.deliver(dctx, u, plain, expiresAt)
		}()
	} else {
		s.deliver(ctx, u, plain, expiresAt)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "expires_at": expiresAt}).Info("password reset token issued")
	}
	return nil
}

func (s *PasswordResetService) deliver(ctx context.Context, u *entity.User, plain string, expiresAt time.Time) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.DeliverResetToken(ctx, u, plain, expiresAt); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset token delivery failed")
	}
}

// Wait blocks until every detached delivery has finished.
func (s *PasswordResetService) Wait() {
	s.inflight.Wait()
}

// RedeemReset replaces the password of the account holding token and burns the token.
func (s *PasswordResetService) RedeemReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < s.MinPasswordLength {
		return apperror.New(apperror.KindWeakPassword, fmt.Sprintf("password must be at least %d characters long", s.MinPasswordLength))
	}
	if token == "" {
		return apperror.ErrInvalidOrExpiredToken
	}
	hash := helpers.HashResetToken(token)
	now := s.Now()

	// cheap lookup first so garbage tokens never cost a bcrypt round
	u, err := s.Users.GetByResetTokenHash(ctx, hash, now)
	if errors.Is(err, apperror.ErrNotFound) {
		s.clearExpired(ctx, hash, now)
		return apperror.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return apperror.Internal(err)
	}

	pwHash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return apperror.Internal(err)
	}
	if _, err := s.Users.ConsumeResetToken(ctx, hash, pwHash, now); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ErrInvalidOrExpiredToken
		}
		return apperror.Internal(err)
	}
	if s.Logger != nil {
		s.Logger.WithField("user_id", u.ID).Info("password reset redeemed")
	}
	notifyPasswordChanged(ctx, s.Notifier, s.Logger, u)
	return nil
}

// clearExpired drops a stale pair so no hash outlives its expiry in the store.
func (s *PasswordResetService) clearExpired(ctx context.Context, hash string, now time.Time) {
	cleared, err := s.Users.ClearExpiredReset(ctx, hash, now)
	if s.Logger == nil {
		return
	}
	if err != nil {
		s.Logger.WithError(err).Warn("clearing expired reset token failed")
		return
	}
	if cleared {
		s.Logger.Debug("expired reset token cleared")
	}
}
