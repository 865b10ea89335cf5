package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/eduflex-backend/internal/domain/apperror"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/pkg/helpers"
)

func TestResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.account(t, "ada", entity.RoleStudent)

	require.NoError(t, f.reset.RequestReset(ctx, "Ada@EduFlex.test"))
	sent := f.notifier.lastToken(t)
	assert.Equal(t, p.UserID, sent.UserID)
	assert.Len(t, sent.Token, helpers.ResetTokenBytes*2)

	u, err := f.store.Users().GetByID(ctx, p.UserID)
	require.NoError(t, err)
	require.NotNil(t, u.ResetTokenHash)
	assert.NotEqual(t, sent.Token, *u.ResetTokenHash)
	assert.Equal(t, helpers.HashResetToken(sent.Token), *u.ResetTokenHash)

	require.NoError(t, f.reset.RedeemReset(ctx, sent.Token, "brandnew"))
	_, err = f.auth.Login(ctx, "ada@eduflex.test", "brandnew")
	assert.NoError(t, err)

	u, err = f.store.Users().GetByID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiry)

	err = f.reset.RedeemReset(ctx, sent.Token, "another1")
	assert.ErrorIs(t, err, apperror.ErrInvalidOrExpiredToken)
}

func TestResetUnknownEmailLooksLikeSuccess(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.reset.RequestReset(context.Background(), "ghost@x.io"))
	assert.Empty(t, f.notifier.tokens)
}

func TestResetDeliveryFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.account(t, "ada", entity.RoleStudent)
	f.notifier.failOn = errors.New("smtp down")

	assert.NoError(t, f.reset.RequestReset(context.Background(), "ada@eduflex.test"))
	var logged bool
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "reset token delivery failed" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestResetTokenExpires(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.account(t, "ada", entity.RoleStudent)

	base := time.Now()
	f.reset.Now = func() time.Time { return base }
	require.NoError(t, f.reset.RequestReset(ctx, "ada@eduflex.test"))
	sent := f.notifier.lastToken(t)

	f.reset.Now = func() time.Time { return base.Add(time.Hour + time.Second) }
	err := f.reset.RedeemReset(ctx, sent.Token, "brandnew")
	assert.ErrorIs(t, err, apperror.ErrInvalidOrExpiredToken)
}

func TestRedeemingExpiredTokenClearsStoredPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.account(t, "ada", entity.RoleStudent)

	base := time.Now()
	f.reset.Now = func() time.Time { return base }
	require.NoError(t, f.reset.RequestReset(ctx, "ada@eduflex.test"))
	sent := f.notifier.lastToken(t)

	f.reset.Now = func() time.Time { return base.Add(2 * time.Hour) }
	assert.ErrorIs(t, f.reset.RedeemReset(ctx, sent.Token, "brandnew"), apperror.ErrInvalidOrExpiredToken)

	u, err := f.store.Users().GetByID(ctx, p.UserID)
	require.NoError(t, err)
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiry)

	_, err = f.auth.Login(ctx, "ada@eduflex.test", "secret123")
	assert.NoError(t, err)
}

func TestNewResetRequestSupersedesOldToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.account(t, "ada", entity.RoleStudent)

	require.NoError(t, f.reset.RequestReset(ctx, "ada@eduflex.test"))
	first := f.notifier.lastToken(t)
	require.NoError(t, f.reset.RequestReset(ctx, "ada@eduflex.test"))
	second := f.notifier.lastToken(t)

	assert.ErrorIs(t, f.reset.RedeemReset(ctx, first.Token, "brandnew"), apperror.ErrInvalidOrExpiredToken)
	assert.NoError(t, f.reset.RedeemReset(ctx, second.Token, "brandnew"))
}

func TestRedeemRejectsWeakPasswordAndEmptyToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.ErrorIs(t, f.reset.RedeemReset(ctx, "whatever", "abc"), apperror.ErrWeakPassword)
	assert.ErrorIs(t, f.reset.RedeemReset(ctx, "", "longenough"), apperror.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, f.reset.RedeemReset(ctx, "deadbeef", "longenough"), apperror.ErrInvalidOrExpiredToken)
}

// blockingNotifier holds reset deliveries until release is closed.
type blockingNotifier struct {
	recordingNotifier
	release chan struct{}
}

func (n *blockingNotifier) DeliverResetToken(ctx context.Context, u *entity.User, token string, expiresAt time.Time) error {
	<-n.release
	return n.recordingNotifier.DeliverResetToken(ctx, u, token, expiresAt)
}

func TestAsyncResetDeliveryDoesNotHoldRequest(t *testing.T) {
	f := newFixture(t)
	f.account(t, "ada", entity.RoleStudent)
	n := &blockingNotifier{release: make(chan struct{})}
	f.reset.Notifier = n
	f.reset.AsyncDelivery = true

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.reset.RequestReset(ctx, "ada@eduflex.test"))
	cancel()

	n.mu.Lock()
	assert.Empty(t, n.tokens)
	n.mu.Unlock()

	close(n.release)
	f.reset.Wait()
	sent := n.lastToken(t)
	assert.NoError(t, f.reset.RedeemReset(context.Background(), sent.Token, "brandnew"))
}
