package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
)

// AccountNotifier delivers account messages out of band. The reset token is
// handed over in plaintext exactly once and must not be stored by the notifier.
type AccountNotifier interface {
	DeliverResetToken(ctx context.Context, u *entity.User, token string, expiresAt time.Time) error
	PasswordChanged(ctx context.Context, u *entity.User) error
}

// CourseIndex is a full-text index over courses. Implementations are best-effort.
type CourseIndex interface {
	Index(ctx context.Context, c *entity.Course) error
	Remove(ctx context.Context, id string) error
	// Search returns matching course ids, best match first.
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// FileStore persists submission files and returns a reference to the stored object.
type FileStore interface {
	Put(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
