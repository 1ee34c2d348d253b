package domain

import "time"

type NotificationType string

const (
	NotificationTypeReturnReminder NotificationType = "RETURN_REMINDER"
	NotificationTypeOverdueAlert   NotificationType = "OVERDUE_ALERT"
	NotificationTypeOrderConfirmed NotificationType = "ORDER_CONFIRMED"
	NotificationTypeNewOrder       NotificationType = "NEW_ORDER"
)

// Notification is unique per (UserID, Type, ReferenceID, DateBucket). The
// bucket is the UTC calendar day the notification belongs to.
type Notification struct {
	ID          int32             `json:"id"`
	UserID      int32             `json:"user_id"`
	Type        NotificationType  `json:"type"`
	ReferenceID int32             `json:"reference_id"`
	DateBucket  time.Time         `json:"date_bucket"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	IsRead      bool              `json:"is_read"`
	Attributes  map[string]string `json:"attributes"`
	CreatedOn   time.Time         `json:"created_on"`
}

// NotificationKey is the idempotency key of a notification.
type NotificationKey struct {
	UserID      int32
	Type        NotificationType
	ReferenceID int32
	DateBucket  time.Time
}

func (n *Notification) Key() NotificationKey {
	return NotificationKey{
		UserID:      n.UserID,
		Type:        n.Type,
		ReferenceID: n.ReferenceID,
		DateBucket:  n.DateBucket,
	}
}
