package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/eduflex-backend/config"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/pkg/mailer"
	tpl "github.com/oksasatya/eduflex-backend/pkg/mailer/templates"
)

type capturePub struct {
	jobs []mailer.EmailJob
	err  error
}

func (p *capturePub) PublishJSON(_ context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func TestQueueNotifierResetJob(t *testing.T) {
	pub := &capturePub{}
	cfg := &config.Config{AppName: "EduFlex", ResetPasswordURL: "https://app.test/reset"}
	n := NewQueueNotifier(pub, cfg, nil)
	exp := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)

	u := &entity.User{ID: "u1", Name: "Ada", Email: "ada@x.io"}
	require.NoError(t, n.DeliverResetToken(context.Background(), u, "abc123", exp))
	require.Len(t, pub.jobs, 1)

	job := pub.jobs[0]
	assert.Equal(t, "ada@x.io", job.To)
	assert.Equal(t, tpl.ResetPassword, job.Template)
	assert.Equal(t, "https://app.test/reset?token=abc123", job.Data["ResetURL"])
	assert.Equal(t, "Ada", job.Data["Name"])
}

func TestQueueNotifierPropagatesPublishError(t *testing.T) {
	pub := &capturePub{err: errors.New("broker down")}
	n := NewQueueNotifier(pub, &config.Config{}, nil)
	err := n.DeliverResetToken(context.Background(), &entity.User{Email: "a@x.io"}, "t", time.Now())
	assert.Error(t, err)
}

func TestLogNotifierNeverLogsToken(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := LogNotifier{Logger: logger}
	require.NoError(t, n.DeliverResetToken(context.Background(), &entity.User{ID: "u1"}, "supersecret", time.Now()))
	for _, e := range hook.AllEntries() {
		s, _ := e.String()
		assert.NotContains(t, s, "supersecret")
	}
}

func TestResetLinkKeepsExistingQuery(t *testing.T) {
	assert.Equal(t, "https://app.test/reset?lang=en&token=t%2B1", ResetLink("https://app.test/reset?lang=en", "t+1"))
}
