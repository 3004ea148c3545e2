// Package audit keeps an append-only history of committed status changes.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	auditDatamodel "github.com/frahmantamala/workforce-portal/internal/core/datamodel/audit"
	"github.com/frahmantamala/workforce-portal/internal/core/events"
)

type Entry struct {
	ID         int64     `json:"id"`
	EventID    string    `json:"event_id"`
	EntityType string    `json:"entity_type"`
	EntityID   int64     `json:"entity_id"`
	Action     string    `json:"action"`
	ActorID    int64     `json:"actor_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Repository interface {
	// Append ignores an entry whose event was already recorded.
	Append(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*Entry, error)
}

// Recorder writes an entry for every committed transition on the bus.
type Recorder struct {
	repo   Repository
	logger *slog.Logger
}

func NewRecorder(repo Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeTransitionCommitted, r.Handle)
}

func (r *Recorder) Handle(ctx context.Context, event events.Event) error {
	committed, ok := event.(*events.TransitionCommittedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, event.EventType())
	}

	entry := &Entry{
		EventID:    committed.EventID(),
		EntityType: committed.EntityType,
		EntityID:   committed.EntityID,
		Action:     committed.Action,
		ActorID:    committed.ActorID,
		FromStatus: committed.FromStatus,
		ToStatus:   committed.ToStatus,
		CreatedAt:  committed.OccurredAt(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry for %s %d: %w", entry.EntityType, entry.EntityID, err)
	}

	r.logger.Debug("transition audited",
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"from", entry.FromStatus,
		"to", entry.ToStatus)
	return nil
}

func ToDataModel(e *Entry) *auditDatamodel.TransitionAudit {
	return &auditDatamodel.TransitionAudit{
		ID:         e.ID,
		EventID:    e.EventID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		ActorID:    e.ActorID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		CreatedAt:  e.CreatedAt,
	}
}

func FromDataModel(a *auditDatamodel.TransitionAudit) *Entry {
	return &Entry{
		ID:         a.ID,
		EventID:    a.EventID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Action:     a.Action,
		ActorID:    a.ActorID,
		FromStatus: a.FromStatus,
		ToStatus:   a.ToStatus,
		CreatedAt:  a.CreatedAt,
	}
}
