package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	repo "github.com/oksasatya/eduflex-backend/internal/domain/repository"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

// ProfileResolver resolves user ids to public profiles for course owners and
// members, with an optional Redis read-through cache. Only public fields are cached.
type ProfileResolver struct {
	Users  repo.UserRepository
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger

	group singleflight.Group
}

// fillTimeout bounds a store read shared by concurrent callers. The read runs
// detached from any single caller, so one abandoned request cannot fail the others.
const fillTimeout = 5 * time.Second

func NewProfileResolver(users repo.UserRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *ProfileResolver {
	return &ProfileResolver{Users: users, Redis: rdb, TTL: ttl, Logger: logger}
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// Get returns the profile for id, or NotFound.
func (r *ProfileResolver) Get(ctx context.Context, id string) (*entity.UserProfile, error) {
	if r.Redis != nil {
		var p entity.UserProfile
		found, err := helpers.RedisGetJSON(ctx, r.Redis, profileKey(id), &p)
		if err != nil {
			r.warn(err, id, "profile cache read failed")
		} else if found {
			return &p, nil
		}
	}

	ch := r.group.DoChan(id, func() (any, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		u, err := r.Users.GetByID(fillCtx, id)
		if err != nil {
			return nil, err
		}
		p := u.Profile()
		if r.Redis != nil {
			if err := helpers.RedisSetJSON(fillCtx, r.Redis, profileKey(id), p, r.TTL); err != nil {
				r.warn(err, id, "profile cache write failed")
			}
		}
		return &p, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entity.UserProfile), nil
	}
}

// GetMany resolves ids in order, skipping users that no longer exist.
func (r *ProfileResolver) GetMany(ctx context.Context, ids []string) ([]entity.UserProfile, error) {
	out := make([]entity.UserProfile, 0, len(ids))
	for _, id := range ids {
		p, err := r.Get(ctx, id)
		if errors.Is(err, apperror.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Invalidate drops the cached profile after a change to name, email or role.
func (r *ProfileResolver) Invalidate(ctx context.Context, id string) {
	if r == nil || r.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, r.Redis, profileKey(id)); err != nil {
		r.warn(err, id, "profile cache invalidation failed")
	}
}

func (r *ProfileResolver) warn(err error, id, msg string) {
	if r.Logger != nil {
		r.Logger.WithError(err).WithField("user_id", id).Warn(msg)
	}
}
