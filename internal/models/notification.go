package models

import "time"

// NotificationType tags the originating event of a notification.
type NotificationType string

const (
	NotificationNewFollower    NotificationType = "NEW_FOLLOWER"
	NotificationMutualFollow   NotificationType = "MUTUAL_FOLLOW"
	NotificationListingFollow  NotificationType = "LISTING_FOLLOW"
	NotificationNewLike        NotificationType = "NEW_LIKE"
	NotificationNewComment     NotificationType = "NEW_COMMENT"
	NotificationNewReservation NotificationType = "NEW_RESERVATION"
)

// Notification is a fire-and-forget inbox entry for a user. It is created as
// a side effect of another mutation and is never referenced back by the
// originating entity; the only mutation after insert is flipping IsRead.
type Notification struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	ActorID uint             `gorm:"index" json:"actor_id"`
	Type    NotificationType `gorm:"not null;index" json:"type"`
	Content string           `gorm:"not null" json:"content"`
	IsRead  bool             `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}
