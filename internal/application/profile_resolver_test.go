package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
)

// gatedUsers holds every GetByID until release is closed and records the
// state of the context the read ran with.
type gatedUsers struct {
	repo.UserRepository
	started chan struct{}
	release chan struct{}

	mu      sync.Mutex
	ctxErrs []error
}

func (g *gatedUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	select {
	case g.started <- struct{}{}:
	default:
	}
	<-g.release
	g.mu.Lock()
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	g.mu.Unlock()
	return g.UserRepository.GetByID(ctx, id)
}

func TestProfileResolverSharedFillSurvivesCancelledCaller(t *testing.T) {
	f := newFixture(t)
	p := f.account(t, "ada", entity.RoleProfessor)
	g := &gatedUsers{UserRepository: f.store.Users(), started: make(chan struct{}, 1), release: make(chan struct{})}
	r := NewProfileResolver(g, nil, time.Minute, f.logger)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := r.Get(ctxA, p.UserID)
		errA <- err
	}()
	<-g.started

	type result struct {
		profile *entity.UserProfile
		err     error
	}
	resB := make(chan result, 1)
	go func() {
		prof, err := r.Get(context.Background(), p.UserID)
		resB <- result{prof, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(g.release)
	res := <-resB
	require.NoError(t, res.err)
	assert.Equal(t, "ada", res.profile.Name)

	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.ctxErrs)
	for _, err := range g.ctxErrs {
		assert.NoError(t, err)
	}
}

func TestProfileResolverGetMany(t *testing.T) {
	f := newFixture(t)
	a := f.account(t, "ada", entity.RoleStudent)
	b := f.account(t, "bob", entity.RoleStudent)

	got, err := f.profiles.GetMany(context.Background(), []string{b.UserID, "00000000-0000-0000-0000-000000000000", a.UserID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Name)
	assert.Equal(t, "ada", got[1].Name)

	_, err = f.profiles.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
