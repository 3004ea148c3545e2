package internal

import "fmt"

type WarningKind string

const (
	// WarningDelivery marks an email that could not be sent after the transition committed.
	WarningDelivery WarningKind = "DELIVERY_WARNING"
	// WarningReconcile marks a parent report whose status could not be recomputed.
	WarningReconcile WarningKind = "RECONCILE_WARNING"
	// WarningNotification marks an in-app record or recipient that could not be resolved.
	WarningNotification WarningKind = "NOTIFICATION_WARNING"
)

// Warning is a non-fatal problem reported alongside a committed transition.
type Warning struct {
	Kind        WarningKind `json:"kind"`
	RecipientID int64       `json:"recipient_id,omitempty"`
	Message     string      `json:"message"`
}

func (w Warning) String() string {
	if w.RecipientID != 0 {
		return fmt.Sprintf("%s (recipient %d): %s", w.Kind, w.RecipientID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

func NewDeliveryWarning(recipientID int64, err error) Warning {
	return Warning{Kind: WarningDelivery, RecipientID: recipientID, Message: err.Error()}
}

func NewReconcileWarning(err error) Warning {
	return Warning{Kind: WarningReconcile, Message: err.Error()}
}

func NewNotificationWarning(recipientID int64, err error) Warning {
	return Warning{Kind: WarningNotification, RecipientID: recipientID, Message: err.Error()}
}
