package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ddd-blog/pkg/mailer/templates"
)

// EmailPublisher enqueues email jobs; satisfied by helpers.RabbitPublisher.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Notifier turns account events into queued email jobs. A nil Notifier or
// one without a publisher is a no-op. Failures are logged, never returned.
type Notifier struct {
	Pub     EmailPublisher
	Brand   mailtpl.Brand
	Enabled bool
	Logger  *logrus.Logger
}

func NewNotifier(pub EmailPublisher, brand mailtpl.Brand, enabled bool, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Brand: brand, Enabled: enabled, Logger: logger}
}

func (n *Notifier) active() bool {
	return n != nil && n.Enabled && n.Pub != nil
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.active() {
		return
	}
	data := mailtpl.NewWelcomeData(n.Brand, u.Name, u.Email, mailtpl.WithTime(time.Now()))
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.Welcome, Data: data}, u.ID)
}

func (n *Notifier) ProfileUpdated(ctx context.Context, u *entity.User, changes map[string]string) {
	if !n.active() || len(changes) == 0 {
		return
	}
	data := mailtpl.NewProfileUpdatedData(n.Brand, u.Name, u.Email, changes, mailtpl.WithTime(time.Now()))
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.ProfileUpdated, Data: data}, u.ID)
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob, userID string) {
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "template": job.Template}).Warn("failed to publish email job")
	}
}
