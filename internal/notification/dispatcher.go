package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/mailer"
	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	"github.com/frahmantamala/workforce-portal/internal/user"
	"github.com/google/uuid"
)

type PreferenceSource interface {
	Get(ctx context.Context, userID int64) (*preference.Preferences, error)
}

type RecipientDirectory interface {
	GetByID(ctx context.Context, userID int64) (*user.User, error)
}

type Decider interface {
	Decide(intent Intent, prefs *preference.Preferences, now time.Time) Decision
}

var errNoEmailAddress = errors.New("recipient has no email address")

// Dispatcher turns intents into in-app records and best-effort emails.
// Every intent is handled on its own: a failure for one recipient is
// reported as a warning and the next intent is still delivered.
type Dispatcher struct {
	repo      Repository
	prefs     PreferenceSource
	directory RecipientDirectory
	decider   Decider
	renderer  *Renderer
	transport mailer.Transport
	metrics   *metrics.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

type DispatcherOption func(*Dispatcher)

func WithMetrics(m *metrics.Recorder) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(
	repo Repository,
	prefs PreferenceSource,
	directory RecipientDirectory,
	decider Decider,
	renderer *Renderer,
	transport mailer.Transport,
	logger *slog.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		repo:      repo,
		prefs:     prefs,
		directory: directory,
		decider:   decider,
		renderer:  renderer,
		transport: transport,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers intents in order and returns the warnings collected on
// the way. It never fails the caller; emails are sent at most once.
func (d *Dispatcher) Dispatch(ctx context.Context, intents []Intent) []internal.Warning {
	var warnings []internal.Warning
	for _, intent := range intents {
		if w, ok := d.deliver(ctx, intent); !ok {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func (d *Dispatcher) deliver(ctx context.Context, intent Intent) (internal.Warning, bool) {
	now := d.now().UTC()
	n := &Notification{
		ID:          uuid.NewString(),
		RecipientID: intent.RecipientID,
		Kind:        intent.Kind,
		Priority:    intent.Priority,
		EntityType:  intent.EntityType,
		EntityID:    intent.EntityID,
		Metadata:    intent.Metadata,
		CreatedAt:   now,
	}

	if err := d.repo.Create(ctx, n); err != nil {
		d.logger.Error("failed to create notification", "error", err, "recipient_id", intent.RecipientID, "kind", intent.Kind)
		return internal.NewNotificationWarning(intent.RecipientID, err), false
	}
	d.metrics.NotificationCreated(string(n.Kind))

	prefs, err := d.prefs.Get(ctx, intent.RecipientID)
	if err != nil {
		d.logger.Warn("using default preferences", "error", err, "recipient_id", intent.RecipientID)
		prefs = preference.Defaults(intent.RecipientID)
	}

	decision := d.decider.Decide(intent, prefs, now)
	if !decision.Email {
		d.metrics.EmailResult(metrics.EmailSuppressed)
		d.logger.Debug("email suppressed", "notification_id", n.ID, "recipient_id", n.RecipientID, "reason", decision.Reason)
		return internal.Warning{}, true
	}

	recipient, err := d.directory.GetByID(ctx, intent.RecipientID)
	if err == nil && recipient.Email == "" {
		err = errNoEmailAddress
	}
	if err != nil {
		d.logger.Error("failed to resolve notification recipient", "error", err, "recipient_id", intent.RecipientID)
		return internal.NewNotificationWarning(intent.RecipientID, err), false
	}

	email, err := d.renderer.Render(n, recipient.Email, recipient.Name)
	if err != nil {
		d.metrics.EmailResult(metrics.EmailFailed)
		d.logger.Error("failed to render notification email", "error", err, "notification_id", n.ID)
		return internal.NewDeliveryWarning(intent.RecipientID, err), false
	}

	if err := d.send(ctx, email); err != nil {
		d.metrics.EmailResult(metrics.EmailFailed)
		d.logger.Warn("notification email not delivered", "error", err, "notification_id", n.ID, "recipient_id", n.RecipientID)
		return internal.NewDeliveryWarning(intent.RecipientID, err), false
	}
	d.metrics.EmailResult(metrics.EmailSent)

	if err := d.repo.MarkEmailSent(ctx, n.ID); err != nil {
		d.logger.Warn("failed to flag notification as emailed", "error", err, "notification_id", n.ID)
	}
	return internal.Warning{}, true
}

// send turns a panicking transport into an error.
func (d *Dispatcher) send(ctx context.Context, email mailer.Email) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email transport panicked: %v", r)
		}
	}()
	return d.transport.Send(ctx, email)
}
