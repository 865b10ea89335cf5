package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/internal/domain/policy"
	"github.com/oksasatya/eduflex-backend/internal/infrastructure/memory"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

type sentToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type recordingNotifier struct {
	mu      sync.Mutex
	tokens  []sentToken
	changed []string
	failOn  error
}

func (n *recordingNotifier) DeliverResetToken(_ context.Context, u *entity.User, token string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failOn != nil {
		return n.failOn
	}
	n.tokens = append(n.tokens, sentToken{UserID: u.ID, Token: token, ExpiresAt: expiresAt})
	return nil
}

func (n *recordingNotifier) PasswordChanged(_ context.Context, u *entity.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, u.ID)
	return nil
}

func (n *recordingNotifier) lastToken(t *testing.T) sentToken {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.tokens, "no reset token delivered")
	return n.tokens[len(n.tokens)-1]
}

type fixture struct {
	store       *memory.Store
	notifier    *recordingNotifier
	logger      *logrus.Logger
	logs        *test.Hook
	auth        *AuthService
	reset       *PasswordResetService
	profiles    *ProfileResolver
	courses     *CourseService
	assignments *AssignmentService
	users       *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	store := memory.NewStore()
	n := &recordingNotifier{}
	hasher := helpers.NewPasswordHasher(bcrypt.MinCost, 4)
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "eduflex-test")

	auth := NewAuthService(store.Users(), jwt, hasher, n, logger, 6)
	profiles := NewProfileResolver(store.Users(), nil, time.Minute, logger)
	return &fixture{
		store:       store,
		notifier:    n,
		logger:      logger,
		logs:        hook,
		auth:        auth,
		reset:       NewPasswordResetService(store.Users(), hasher, n, logger, time.Hour, 6),
		profiles:    profiles,
		courses:     NewCourseService(store.Courses(), store.Users(), profiles, nil, logger),
		assignments: NewAssignmentService(store.Assignments(), store.Courses(), nil, logger),
		users:       NewUserService(store.Users(), auth, profiles, logger),
	}
}

// account creates a user with the given role and returns its principal.
func (f *fixture) account(t *testing.T, name string, role entity.Role) policy.Principal {
	t.Helper()
	u, err := f.auth.createAccount(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@eduflex.test",
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return policy.Principal{UserID: u.ID, Role: u.Role}
}

func (f *fixture) course(t *testing.T, owner policy.Principal, title string) *entity.CourseView {
	t.Helper()
	c, err := f.courses.Create(context.Background(), owner, CreateCourseInput{Title: title, Description: title + " basics"})
	require.NoError(t, err)
	return c
}
