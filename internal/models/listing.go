package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing represents a bookable business profile owned by a user.
type Listing struct {
	ID            uint     `gorm:"primaryKey" json:"id"`
	UserID        uint     `gorm:"not null;index" json:"user_id"`
	Owner         User     `gorm:"foreignKey:UserID" json:"owner,omitempty"`
	Title         string   `gorm:"not null" json:"title"`
	Description   string   `gorm:"type:text;not null" json:"description"`
	CoverImage    string   `json:"cover_image"`
	GalleryImages []string `gorm:"serializer:json" json:"gallery_images"`
	Category      string   `gorm:"index" json:"category"`
	Location      string   `json:"location"`
	Address       string   `json:"address"`
	ZipCode       string   `json:"zip_code"`

	Services   []ListingService `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"services"`
	Employees  []Employee       `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"employees"`
	StoreHours []StoreHour      `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"store_hours"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ListingService is a bookable service offered by a listing.
type ListingService struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ListingID uint    `gorm:"not null;index" json:"listing_id"`
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Category  string  `json:"category"`
}

// Employee is a staff member bookable on a listing.
type Employee struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ListingID uint   `gorm:"not null;index" json:"listing_id"`
	Name      string `gorm:"not null" json:"name"`
}

// StoreHour describes opening hours for one day of the week.
type StoreHour struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ListingID uint   `gorm:"not null;index" json:"listing_id"`
	DayOfWeek string `gorm:"not null" json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `gorm:"default:false" json:"closed"`
}

// HasService reports whether the given service id is a child of the listing.
// Children must be preloaded.
func (l *Listing) HasService(serviceID uint) bool {
	for _, s := range l.Services {
		if s.ID == serviceID {
			return true
		}
	}
	return false
}

// HasEmployee reports whether the given employee id is a child of the listing.
func (l *Listing) HasEmployee(employeeID uint) bool {
	for _, e := range l.Employees {
		if e.ID == employeeID {
			return true
		}
	}
	return false
}

// ServiceByID returns the child service with the given id, or nil.
func (l *Listing) ServiceByID(serviceID uint) *ListingService {
	for i := range l.Services {
		if l.Services[i].ID == serviceID {
			return &l.Services[i]
		}
	}
	return nil
}
