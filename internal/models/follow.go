package models

import "time"

// Follow is a directed follow edge between two users. The unique index on
// the pair makes the toggle an atomic insert/delete instead of the
// read-modify-write array update it replaces.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListingFollow is a follow edge from a user to a listing.
type ListingFollow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_listing_follow_pair" json:"user_id"`
	ListingID uint      `gorm:"not null;uniqueIndex:idx_listing_follow_pair;index" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}
