package repository

import (
	"context"
	"time"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

// UserRepository defines the persistence operations the identity core relies on.
// Implementations return apperror NotFound when a lookup matches nothing and
// apperror DuplicateEmail when the case-insensitive email constraint is violated.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByResetTokenHash finds the user holding hash with an expiry after now.
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	// ConsumeResetToken atomically replaces the password hash and clears the reset
	// pair, provided hash is still stored and unexpired at now. It returns the
	// user id, or NotFound when the token was already used or has expired.
	ConsumeResetToken(ctx context.Context, hash, passwordHash string, now time.Time) (string, error)
	// ClearExpiredReset drops the reset pair holding hash when it expired at or
	// before now. It reports whether a pair was cleared.
	ClearExpiredReset(ctx context.Context, hash string, now time.Time) (bool, error)
	Update(ctx context.Context, id string, upd entity.UserUpdate) error
	List(ctx context.Context) ([]entity.User, error)
}
