package models

import (
	"time"

	"gorm.io/gorm"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusOverdue   ReservationStatus = "overdue"
)

// ValidReservationStatus reports whether s is a known status value.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusCompleted, ReservationStatusCancelled,
		ReservationStatusOverdue:
		return true
	}
	return false
}

// Reservation links a booker to a listing/service/employee/time slot.
//
// PaymentIntentID is nullable and unique: direct bookings leave it NULL,
// checkout-reconciled bookings carry the gateway payment intent id. The
// unique index is what makes payment reconciliation idempotent under
// concurrent verification.
type Reservation struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	User       User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ListingID  uint            `gorm:"not null;index" json:"listing_id"`
	Listing    Listing         `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	ServiceID  *uint           `gorm:"index" json:"service_id,omitempty"`
	Service    *ListingService `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	EmployeeID *uint           `gorm:"index" json:"employee_id,omitempty"`
	Employee   *Employee       `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`

	Date       time.Time         `gorm:"not null;index" json:"date"`
	TimeSlot   string            `gorm:"not null" json:"time"`
	TotalPrice float64           `gorm:"not null" json:"total_price"`
	Status     ReservationStatus `gorm:"not null;default:pending" json:"status"`
	Note       string            `json:"note"`

	PaymentIntentID *string `gorm:"uniqueIndex" json:"payment_intent_id,omitempty"`
	PaymentStatus   string  `json:"payment_status,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
