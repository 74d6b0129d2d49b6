package models

import "time"

// Safe views are normalized, null-defaulted projections of stored entities.
// Normalization happens once at this boundary: callers above it always see
// fully-populated optional fields (empty slices, explicit nulls, RFC3339
// date strings), never a missing key.

// UserSummary is the public projection of a user embedded in other views.
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ListingView is the public-safe projection of a Listing.
type ListingView struct {
	ID            uint            `json:"id"`
	UserID        uint            `json:"user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	CoverImage    *string         `json:"cover_image"`
	GalleryImages []string        `json:"gallery_images"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	Address       string          `json:"address"`
	ZipCode       string          `json:"zip_code"`
	Services      []ServiceView   `json:"services"`
	Employees     []EmployeeView  `json:"employees"`
	StoreHours    []StoreHourView `json:"store_hours"`
	FollowerIDs   []uint          `json:"follower_ids"`
	Following     bool            `json:"following"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// ServiceView is the projection of a ListingService.
type ServiceView struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// EmployeeView is the projection of an Employee.
type EmployeeView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StoreHourView is the projection of a StoreHour.
type StoreHourView struct {
	DayOfWeek string `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}

// ToListingView builds the safe view of a listing. followerIDs may be nil.
func ToListingView(l *Listing, followerIDs []uint) *ListingView {
	v := &ListingView{
		ID:            l.ID,
		UserID:        l.UserID,
		Title:         l.Title,
		Description:   l.Description,
		GalleryImages: []string{},
		Category:      l.Category,
		Location:      l.Location,
		Address:       l.Address,
		ZipCode:       l.ZipCode,
		Services:      []ServiceView{},
		Employees:     []EmployeeView{},
		StoreHours:    []StoreHourView{},
		FollowerIDs:   []uint{},
		CreatedAt:     l.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     l.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if l.CoverImage != "" {
		cover := l.CoverImage
		v.CoverImage = &cover
	}
	if len(l.GalleryImages) > 0 {
		v.GalleryImages = append(v.GalleryImages, l.GalleryImages...)
	}
	for _, s := range l.Services {
		v.Services = append(v.Services, ServiceView{ID: s.ID, Name: s.Name, Price: s.Price, Category: s.Category})
	}
	for _, e := range l.Employees {
		v.Employees = append(v.Employees, EmployeeView{ID: e.ID, Name: e.Name})
	}
	for _, h := range l.StoreHours {
		v.StoreHours = append(v.StoreHours, StoreHourView{
			DayOfWeek: h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			Closed:    h.Closed,
		})
	}
	if len(followerIDs) > 0 {
		v.FollowerIDs = append(v.FollowerIDs, followerIDs...)
	}
	return v
}

// ReservationView is the projection of a persisted reservation with the
// denormalized listing/service/employee fields clients render.
type ReservationView struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	ListingID     uint    `json:"listing_id"`
	ListingTitle  string  `json:"listing_title"`
	ServiceID     *uint   `json:"service_id"`
	ServiceName   string  `json:"service_name"`
	EmployeeID    *uint   `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	Date          string  `json:"date"`
	TimeSlot      string  `json:"time"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	Note          string  `json:"note"`
	PaymentStatus string  `json:"payment_status"`
	CreatedAt     string  `json:"created_at"`
}

// ToReservationView builds the safe view of a reservation. Associations must
// be preloaded where present.
func ToReservationView(r *Reservation) *ReservationView {
	v := &ReservationView{
		ID:            r.ID,
		UserID:        r.UserID,
		ListingID:     r.ListingID,
		ListingTitle:  r.Listing.Title,
		ServiceID:     r.ServiceID,
		EmployeeID:    r.EmployeeID,
		Date:          r.Date.UTC().Format("2006-01-02"),
		TimeSlot:      r.TimeSlot,
		TotalPrice:    r.TotalPrice,
		Status:        string(r.Status),
		Note:          r.Note,
		PaymentStatus: r.PaymentStatus,
		CreatedAt:     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.Service != nil {
		v.ServiceName = r.Service.Name
	}
	if r.Employee != nil {
		v.EmployeeName = r.Employee.Name
	}
	return v
}

// PendingReservationView is a provisional reservation synthesized from
// checkout session metadata when the persisted row cannot be reconciled yet.
// It mirrors ReservationView's display fields but carries no durable id;
// clients must treat both shapes as equivalent for display purposes.
type PendingReservationView struct {
	UserID        uint    `json:"user_id"`
	ListingID     uint    `json:"listing_id"`
	ListingTitle  string  `json:"listing_title"`
	ServiceID     *uint   `json:"service_id"`
	ServiceName   string  `json:"service_name"`
	EmployeeID    *uint   `json:"employee_id"`
	EmployeeName  string  `json:"employee_name"`
	Date          string  `json:"date"`
	TimeSlot      string  `json:"time"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
}

// CheckoutVerification is the tagged result of verifying a checkout session:
// exactly one of Reservation (persisted) or Pending (synthesized) is set, so
// callers cannot mistake a provisional view for a durable record.
type CheckoutVerification struct {
	Reservation *ReservationView        `json:"reservation,omitempty"`
	Pending     *PendingReservationView `json:"pending_reservation,omitempty"`
}

// Processing reports whether the verification returned a synthesized view
// that still awaits persistence.
func (v *CheckoutVerification) Processing() bool {
	return v.Pending != nil
}
