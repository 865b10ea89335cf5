// Package notify delivers account e-mails (reset links, password change notices).
package notify

import (
	"context"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/eduflex-backend/config"
	"github.com/oksasatya/eduflex-backend/internal/domain/entity"
	"github.com/oksasatya/eduflex-backend/pkg/mailer"
	tpl "github.com/oksasatya/eduflex-backend/pkg/mailer/templates"
)

// Publisher is the part of helpers.RabbitPublisher the notifier needs.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueNotifier enqueues e-mail jobs for cmd/email_worker.
type QueueNotifier struct {
	Pub    Publisher
	Cfg    *config.Config
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewQueueNotifier(pub Publisher, cfg *config.Config, logger *logrus.Logger) *QueueNotifier {
	return &QueueNotifier{Pub: pub, Cfg: cfg, Logger: logger, Now: time.Now}
}

// ResetLink appends the token to the configured front-end reset URL.
func ResetLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (n *QueueNotifier) DeliverResetToken(ctx context.Context, u *entity.User, token string, expiresAt time.Time) error {
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.ResetPassword,
		Data: tpl.NewResetPasswordData(n.Cfg, u.Name, u.Email,
			tpl.WithResetURL(ResetLink(n.Cfg.ResetPasswordURL, token)),
			tpl.WithExpiresAt(expiresAt),
			tpl.WithTime(n.Now()),
		),
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil {
		return err
	}
	if n.Logger != nil {
		n.Logger.WithField("user_id", u.ID).Info("reset email queued")
	}
	return nil
}

func (n *QueueNotifier) PasswordChanged(ctx context.Context, u *entity.User) error {
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.PasswordChanged,
		Data:     tpl.NewPasswordChangedData(n.Cfg, u.Name, u.Email, tpl.WithTime(n.Now())),
	}
	return n.Pub.PublishJSON(ctx, job)
}

// LogNotifier is used when no queue is configured. It records that a message
// would have been sent and never logs the token itself.
type LogNotifier struct {
	Logger *logrus.Logger
}

func (n LogNotifier) DeliverResetToken(_ context.Context, u *entity.User, _ string, expiresAt time.Time) error {
	if n.Logger != nil {
		n.Logger.WithFields(logrus.Fields{"user_id": u.ID, "expires_at": expiresAt}).Warn("reset token issued but no mail queue is configured")
	}
	return nil
}

func (n LogNotifier) PasswordChanged(_ context.Context, u *entity.User) error {
	if n.Logger != nil {
		n.Logger.WithField("user_id", u.ID).Info("password changed")
	}
	return nil
}
