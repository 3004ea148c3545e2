package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeTransitionCommitted = "approval.transition_committed"

// TransitionCommittedEvent is published once a status change is stored.
type TransitionCommittedEvent struct {
	BaseEvent
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	Action     string `json:"action"`
	ActorID    int64  `json:"actor_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

func NewTransitionCommittedEvent(entityType string, entityID int64, action string, actorID int64, from, to string) *TransitionCommittedEvent {
	return &TransitionCommittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTransitionCommitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entity_type": entityType,
				"entity_id":   entityID,
				"action":      action,
				"actor_id":    actorID,
				"from_status": from,
				"to_status":   to,
			},
		},
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		FromStatus: from,
		ToStatus:   to,
	}
}
