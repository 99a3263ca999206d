package notification

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is a message stored for a user as a result of a team event.
// Delivery is pull-based, the client polls for unread entries.
type Notification struct {
	Id          int
	UserId      int
	Message     string
	IsRead      bool
	CreatedTime time.Time
}
