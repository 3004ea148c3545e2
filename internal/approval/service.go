// Package approval applies status transitions to timesheets and expense
// lines and fans the outcome out to notifications.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/core/common/validation"
	"github.com/frahmantamala/workforce-portal/internal/core/events"
	"github.com/frahmantamala/workforce-portal/internal/expense"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/timesheet"
	"github.com/frahmantamala/workforce-portal/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

type IntentPlanner interface {
	Intents(ctx context.Context, t notification.Transition) ([]notification.Intent, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, intents []notification.Intent) []internal.Warning
}

type Service struct {
	timesheets timesheet.Repository
	expenses   expense.Repository
	planner    IntentPlanner
	dispatcher Dispatcher
	bus        *events.EventBus
	metrics    *metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Service)

// WithEvents publishes every committed transition on bus.
func WithEvents(bus *events.EventBus) Option {
	return func(s *Service) { s.bus = bus }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	timesheets timesheet.Repository,
	expenses expense.Repository,
	planner IntentPlanner,
	dispatcher Dispatcher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		timesheets: timesheets,
		expenses:   expenses,
		planner:    planner,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyTimesheetTransition validates action against the stored timesheet,
// stores the new status and notifies the people involved. An error means
// nothing was written; problems after the write come back as warnings.
func (s *Service) ApplyTimesheetTransition(ctx context.Context, id int64, action ledger.Action, actor auth.Actor, opts Options) (res *TimesheetResult, err error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "approval.ApplyTimesheetTransition",
		attribute.Int64("timesheet.id", id),
		attribute.String("action", action.String()),
		attribute.Int64("actor.id", actor.ID),
	)
	defer func() {
		tracing.EndSpan(span, err)
		s.metrics.ObserveTransition(string(notification.EntityTimesheet), action.String(), outcome(err), time.Since(started))
	}()

	if err := s.authorize(action, actor); err != nil {
		return nil, err
	}
	if action == ledger.ActionSave && opts.TotalHours != nil {
		if err := validation.ValidateTotalHours(*opts.TotalHours); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	before, after, err := s.timesheets.ApplyTransition(ctx, id, func(ts *timesheet.Timesheet) error {
		next, err := ledger.ApplyTimesheet(ts.State(), ledger.Request{
			Action:          action,
			IsOwner:         ts.OwnerID == actor.ID,
			RejectionReason: opts.RejectionReason,
			Now:             now,
		})
		if err != nil {
			return err
		}
		ts.Apply(next)
		if action == ledger.ActionSave && opts.TotalHours != nil {
			ts.TotalHours = *opts.TotalHours
		}
		return nil
	})
	if err != nil {
		s.logger.Info("timesheet transition refused", "timesheet_id", id, "action", action, "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.logger.Info("timesheet transition committed",
		"timesheet_id", id,
		"action", action,
		"actor_id", actor.ID,
		"from", before.Status,
		"to", after.Status)

	post := internal.Detached(ctx)
	s.publish(post, notification.EntityTimesheet, id, action.String(), actor.ID, before.Status, after.Status)

	warnings := s.notify(post, notification.Transition{
		EntityType:      notification.EntityTimesheet,
		EntityID:        id,
		Action:          action,
		ActorID:         actor.ID,
		OwnerID:         after.OwnerID,
		RejectionReason: after.RejectionReason,
		Label:           after.PeriodLabel(),
	})

	return &TimesheetResult{Status: after.Status, Committed: true, Warnings: warnings}, nil
}

// ApplyExpenseLineTransition changes one line, then recomputes the status of
// its report before notifying the report owner.
func (s *Service) ApplyExpenseLineTransition(ctx context.Context, lineID int64, action ledger.Action, actor auth.Actor, opts Options) (res *ExpenseLineResult, err error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "approval.ApplyExpenseLineTransition",
		attribute.Int64("expense_line.id", lineID),
		attribute.String("action", action.String()),
		attribute.Int64("actor.id", actor.ID),
	)
	defer func() {
		tracing.EndSpan(span, err)
		s.metrics.ObserveTransition(string(notification.EntityExpenseLine), action.String(), outcome(err), time.Since(started))
	}()

	if err := s.authorize(action, actor); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	before, after, report, err := s.expenses.ApplyLineTransition(ctx, lineID, func(line *expense.Line, report *expense.Report) error {
		next, err := ledger.ApplyLine(line.State(), ledger.Request{
			Action:          action,
			IsOwner:         report.OwnerID == actor.ID,
			RejectionReason: opts.RejectionReason,
			Now:             now,
		})
		if err != nil {
			return err
		}
		line.Apply(next)
		return nil
	})
	if err != nil {
		s.logger.Info("expense line transition refused", "line_id", lineID, "action", action, "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.logger.Info("expense line transition committed",
		"line_id", lineID,
		"report_id", report.ID,
		"action", action,
		"actor_id", actor.ID,
		"from", before.Status,
		"to", after.Status)

	post := internal.Detached(ctx)
	s.publish(post, notification.EntityExpenseLine, lineID, action.String(), actor.ID, before.Status, after.Status)

	var warnings []internal.Warning
	reportStatus, reportApproved, warning := s.reconcile(post, report, action, actor)
	if warning != nil {
		warnings = append(warnings, *warning)
	}

	warnings = append(warnings, s.notify(post, notification.Transition{
		EntityType:      notification.EntityExpenseLine,
		EntityID:        lineID,
		Action:          action,
		ActorID:         actor.ID,
		OwnerID:         report.OwnerID,
		RejectionReason: after.RejectionReason,
		ReportID:        report.ID,
		ReportApproved:  reportApproved,
		Label:           report.Title,
	})...)

	return &ExpenseLineResult{
		LineStatus:   after.Status,
		ReportStatus: reportStatus,
		Committed:    true,
		Warnings:     warnings,
	}, nil
}

// SubmitExpenseReport submits every line of the report that is not yet
// approved and asks the owner's manager for review.
func (s *Service) SubmitExpenseReport(ctx context.Context, reportID int64, actor auth.Actor) (res *ExpenseReportResult, err error) {
	started := time.Now()
	ctx, span := tracing.StartSpan(ctx, "approval.SubmitExpenseReport",
		attribute.Int64("expense_report.id", reportID),
		attribute.Int64("actor.id", actor.ID),
	)
	defer func() {
		tracing.EndSpan(span, err)
		s.metrics.ObserveTransition(string(notification.EntityExpenseReport), ledger.ActionSubmit.String(), outcome(err), time.Since(started))
	}()

	now := s.now().UTC()
	submitted := 0
	report, err := s.expenses.SubmitReport(ctx, reportID, func(r *expense.Report) error {
		submitted = 0
		if r.OwnerID != actor.ID {
			return internal.NewForbiddenTransitionError(r.Status.String(), ledger.ActionSubmit.String())
		}
		if len(r.Lines) == 0 {
			return internal.NewValidationFieldError("lines", "expense report has no lines", internal.ErrCodeValidationFailed)
		}
		for _, line := range r.Lines {
			if line.Status == ledger.StatusApproved {
				continue
			}
			next, err := ledger.ApplyLine(line.State(), ledger.Request{Action: ledger.ActionSubmit, IsOwner: true, Now: now})
			if err != nil {
				return err
			}
			line.Apply(next)
			submitted++
		}
		if submitted == 0 {
			return internal.NewIllegalTransitionError(r.Status.String(), ledger.ActionSubmit.String())
		}
		return nil
	})
	if err != nil {
		s.logger.Info("expense report submission refused", "report_id", reportID, "actor_id", actor.ID, "error", err)
		return nil, err
	}

	s.logger.Info("expense report submitted", "report_id", reportID, "actor_id", actor.ID, "lines", submitted)

	post := internal.Detached(ctx)
	var warnings []internal.Warning
	reportStatus, _, warning := s.reconcile(post, report, ledger.ActionSubmit, actor)
	if warning != nil {
		warnings = append(warnings, *warning)
	}

	warnings = append(warnings, s.notify(post, notification.Transition{
		EntityType: notification.EntityExpenseReport,
		EntityID:   reportID,
		Action:     ledger.ActionSubmit,
		ActorID:    actor.ID,
		OwnerID:    report.OwnerID,
		Label:      report.Title,
	})...)

	return &ExpenseReportResult{
		ReportStatus:   reportStatus,
		SubmittedLines: submitted,
		Committed:      true,
		Warnings:       warnings,
	}, nil
}

// authorize keeps approve and reject to managers and admins.
func (s *Service) authorize(action ledger.Action, actor auth.Actor) error {
	if (action == ledger.ActionApprove || action == ledger.ActionReject) && !actor.CanApprove() {
		return internal.ErrRoleForbidden
	}
	return nil
}

// reconcile recomputes the report status. On failure the previously stored
// status is reported together with a warning.
func (s *Service) reconcile(ctx context.Context, report *expense.Report, action ledger.Action, actor auth.Actor) (ledger.Status, bool, *internal.Warning) {
	from, to, err := s.expenses.ReconcileReport(ctx, report.ID)
	if err != nil {
		s.logger.Error("failed to reconcile expense report", "error", err, "report_id", report.ID)
		w := internal.NewReconcileWarning(err)
		return report.Status, false, &w
	}
	if from != to {
		s.logger.Info("expense report status derived", "report_id", report.ID, "from", from, "to", to)
		s.publish(ctx, notification.EntityExpenseReport, report.ID, action.String(), actor.ID, from, to)
	}
	return to, from != ledger.StatusApproved && to == ledger.StatusApproved, nil
}

// notify runs after the commit, so even a panic is reported as a warning.
func (s *Service) notify(ctx context.Context, t notification.Transition) (warnings []internal.Warning) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("notification fan-out panicked", "panic", r, "entity_type", t.EntityType, "entity_id", t.EntityID)
			warnings = append(warnings, internal.NewNotificationWarning(0, fmt.Errorf("notification fan-out panicked: %v", r)))
		}
	}()

	intents, err := s.planner.Intents(ctx, t)
	if err != nil {
		s.logger.Error("failed to plan notifications", "error", err, "entity_type", t.EntityType, "entity_id", t.EntityID)
		return []internal.Warning{internal.NewNotificationWarning(0, err)}
	}
	return s.dispatcher.Dispatch(ctx, intents)
}

func (s *Service) publish(ctx context.Context, entity notification.EntityType, id int64, action string, actorID int64, from, to ledger.Status) {
	if s.bus == nil {
		return
	}
	event := events.NewTransitionCommittedEvent(string(entity), id, action, actorID, from.String(), to.String())
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish transition", "error", err, "event_id", event.EventID())
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeCommitted
	case internal.IsValidation(err), internal.IsIllegalTransition(err), internal.IsNotFound(err):
		return metrics.OutcomeRejected
	default:
		if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < 500 {
			return metrics.OutcomeRejected
		}
		return metrics.OutcomeFailed
	}
}
