// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user account in the Parlor application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"`
	Location string `json:"location"`
	IsAdmin  bool   `gorm:"default:false" json:"is_admin"`

	// Subscription fields reconciled from the payment gateway.
	SubscriptionTier      string     `json:"subscription_tier"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionPeriodEnd *time.Time `json:"subscription_period_end,omitempty"`
	GatewayCustomerID     string     `json:"-"`
	GatewaySubscriptionID string     `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Listings []Listing `gorm:"foreignKey:UserID" json:"listings,omitempty"`
}

// Subscription tiers and statuses.
const (
	SubscriptionTierFree  = "free"
	SubscriptionTierBasic = "basic"
	SubscriptionTierPro   = "pro"

	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)
