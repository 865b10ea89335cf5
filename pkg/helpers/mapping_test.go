package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/eduflex-backend/pkg/mailer"
	mailtpl "github.com/oksasatya/eduflex-backend/pkg/mailer/templates"
)

func TestEnsureRecipientAndEmail(t *testing.T) {
	job := mailer.EmailJob{To: "ann@x.com", Template: mailtpl.ResetPassword}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "ann@x.com", job.Data["Email"])
	assert.Equal(t, "ann@x.com", job.Data["RecipientEmail"])

	job = mailer.EmailJob{To: "ann@x.com", Data: map[string]any{"Email": "other@x.com"}}
	EnsureRecipientAndEmail(&job)
	assert.Equal(t, "other@x.com", job.Data["Email"])
}

func TestSubjectFor(t *testing.T) {
	assert.Equal(t, "Reset your password", SubjectFor("RESET_PASSWORD"))
	assert.Equal(t, "Notification", SubjectFor("unknown"))
}
