package helpers

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// HashPassword hashes plain with bcrypt.DefaultCost outside any PasswordHasher.
// Used by the seed command.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PasswordHasher runs bcrypt on a bounded number of concurrent slots so that a
// burst of logins cannot starve the rest of the server of CPU.
type PasswordHasher struct {
	cost int
	sem  *semaphore.Weighted
	// dummy is compared against when no account matched, so a miss costs the same as a wrong password
	dummy []byte
}

// NewPasswordHasher returns a hasher with the given bcrypt cost and at most
// workers concurrent operations. Zero values fall back to bcrypt.DefaultCost and NumCPU.
func NewPasswordHasher(cost, workers int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("eduflex-timing-equaliser"), cost)
	return &PasswordHasher{cost: cost, sem: semaphore.NewWeighted(int64(workers)), dummy: dummy}
}

// Hash salts and hashes plain. It waits for a free slot or for ctx to end.
func (h *PasswordHasher) Hash(ctx context.Context, plain string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches hash. An empty hash is compared against
// a fixed dummy so callers can equalise timing for unknown accounts.
func (h *PasswordHasher) Compare(ctx context.Context, hash, plain string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil, nil
}
