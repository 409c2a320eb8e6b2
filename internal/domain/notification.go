package domain

type NotificationLevel string

const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notification is a transient, dismissible message for the shopper.
type Notification struct {
	Kind    string            `json:"kind"`
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

const (
	NoticeCartAdded       = "cart.added"
	NoticeCartRemoved     = "cart.removed"
	NoticeCartQuantity    = "cart.quantity_changed"
	NoticeCartCleared     = "cart.cleared"
	NoticeCartRestored    = "cart.restored"
	NoticeStorageFailure  = "cart.storage_failed"
	NoticeOrderPlaced     = "order.placed"
	NoticeOrderTransition = "order.status_changed"
)
