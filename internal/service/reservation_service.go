package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"parlor/internal/middleware"
	"parlor/internal/models"
	"parlor/internal/notifications"
	"parlor/internal/repository"

	"gorm.io/gorm"
)

// ReservationInput is the create payload for a reservation, shared by the
// direct path and the checkout path.
type ReservationInput struct {
	ListingID  uint    `json:"listingId"`
	ServiceID  *uint   `json:"serviceId"`
	EmployeeID *uint   `json:"employeeId"`
	Date       string  `json:"date"` // YYYY-MM-DD
	TimeSlot   string  `json:"time"`
	TotalPrice float64 `json:"totalPrice"`
	Note       string  `json:"note"`
}

// preparedReservation is a validated input resolved against the database.
type preparedReservation struct {
	listing *models.Listing
	service *models.ListingService
	date    time.Time
	price   float64
}

// ReservationService provides reservation business logic. It holds the db
// handle directly because creating a reservation and its owner notification
// must commit together.
type ReservationService struct {
	db              *gorm.DB
	reservationRepo repository.ReservationRepository
	listingRepo     repository.ListingRepository
	notifier        *notifications.Notifier
}

// NewReservationService returns a new ReservationService.
func NewReservationService(
	db *gorm.DB,
	reservationRepo repository.ReservationRepository,
	listingRepo repository.ListingRepository,
	notifier *notifications.Notifier,
) *ReservationService {
	return &ReservationService{
		db:              db,
		reservationRepo: reservationRepo,
		listingRepo:     listingRepo,
		notifier:        notifier,
	}
}

// prepare validates the input against the stored listing: required fields,
// child cross-references, authoritative service price.
func (s *ReservationService) prepare(ctx context.Context, input *ReservationInput) (*preparedReservation, error) {
	if input.ListingID == 0 {
		return nil, models.NewValidationError("listingId is required")
	}
	if input.Date == "" {
		return nil, models.NewValidationError("date is required")
	}
	if input.TimeSlot == "" {
		return nil, models.NewValidationError("time is required")
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, models.NewValidationError("date must be formatted YYYY-MM-DD")
	}

	listing, err := s.listingRepo.GetByID(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	prepared := &preparedReservation{
		listing: listing,
		date:    date,
		price:   input.TotalPrice,
	}

	if input.ServiceID != nil {
		svc := listing.ServiceByID(*input.ServiceID)
		if svc == nil {
			return nil, models.NewValidationError("service does not belong to this listing")
		}
		// The stored price is authoritative.
		if input.TotalPrice != 0 && math.Abs(input.TotalPrice-svc.Price) > 0.004 {
			return nil, models.NewValidationError("totalPrice does not match the service price")
		}
		prepared.service = svc
		prepared.price = svc.Price
	} else if input.TotalPrice <= 0 {
		return nil, models.NewValidationError("totalPrice is required")
	}

	if input.EmployeeID != nil && !listing.HasEmployee(*input.EmployeeID) {
		return nil, models.NewValidationError("employee does not belong to this listing")
	}

	return prepared, nil
}

// Create inserts a pending reservation and notifies the listing owner in one
// transaction.
func (s *ReservationService) Create(ctx context.Context, userID uint, input *ReservationInput) (*models.ReservationView, error) {
	prepared, err := s.prepare(ctx, input)
	if err != nil {
		return nil, err
	}

	conflict, err := s.reservationRepo.HasSlotConflict(ctx, input.ListingID, input.EmployeeID, prepared.date, input.TimeSlot)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, models.NewConflictError("time slot is no longer available")
	}

	reservation := &models.Reservation{
		UserID:     userID,
		ListingID:  input.ListingID,
		ServiceID:  input.ServiceID,
		EmployeeID: input.EmployeeID,
		Date:       prepared.date,
		TimeSlot:   input.TimeSlot,
		TotalPrice: prepared.price,
		Status:     models.ReservationStatusPending,
		Note:       input.Note,
	}

	notification, err := s.persistWithNotification(ctx, reservation, prepared.listing)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.publish(ctx, notification)

	return s.view(ctx, reservation.ID)
}

// persistWithNotification writes the reservation and the owner's
// NEW_RESERVATION notification atomically. The returned notification is nil
// for self-bookings.
func (s *ReservationService) persistWithNotification(ctx context.Context, reservation *models.Reservation, listing *models.Listing) (*models.Notification, error) {
	var notification *models.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reservation).Error; err != nil {
			return err
		}
		if listing.UserID == reservation.UserID {
			return nil
		}
		notification = &models.Notification{
			UserID:  listing.UserID,
			ActorID: reservation.UserID,
			Type:    models.NotificationNewReservation,
			Content: fmt.Sprintf("New reservation for %s on %s at %s", listing.Title, reservation.Date.Format("2006-01-02"), reservation.TimeSlot),
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		notification = nil
		return nil, err
	}
	return notification, nil
}

// publish pushes a notification over redis best-effort after commit.
func (s *ReservationService) publish(ctx context.Context, notification *models.Notification) {
	if notification == nil || s.notifier == nil {
		return
	}
	if err := s.notifier.PublishNotification(ctx, notification); err != nil {
		middleware.Logger.WarnContext(ctx, "notification publish failed", "error", err)
	}
}

func (s *ReservationService) view(ctx context.Context, id uint) (*models.ReservationView, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ToReservationView(reservation), nil
}

// List returns reservations matching the filter, newest first. At least one
// filter dimension is required, and each dimension must be scoped to the
// requester unless they are an admin.
func (s *ReservationService) List(ctx context.Context, requesterID uint, isAdmin bool, filter repository.ReservationFilter) ([]*models.ReservationView, error) {
	if filter.Empty() {
		return nil, models.NewValidationError("at least one of listingId, userId, authorId is required")
	}

	if !isAdmin {
		if filter.UserID != 0 && filter.UserID != requesterID {
			return nil, models.NewUnauthorizedError("You can only list your own reservations")
		}
		if filter.AuthorID != 0 && filter.AuthorID != requesterID {
			return nil, models.NewUnauthorizedError("You can only list reservations on your own listings")
		}
		if filter.ListingID != 0 {
			listing, err := s.listingRepo.GetByID(ctx, filter.ListingID)
			if err != nil {
				return nil, err
			}
			if listing.UserID != requesterID {
				return nil, models.NewUnauthorizedError("You can only list reservations on your own listings")
			}
		}
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]*models.ReservationView, 0, len(reservations))
	for i := range reservations {
		views = append(views, models.ToReservationView(&reservations[i]))
	}
	return views, nil
}

// Cancel deletes a reservation. Allowed for the booker, the listing owner,
// or an admin.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID uint, isAdmin bool) error {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != userID && reservation.Listing.UserID != userID && !isAdmin {
		return models.NewUnauthorizedError("You cannot cancel this reservation")
	}
	return s.reservationRepo.Delete(ctx, reservationID)
}

// UpdateStatus moves a reservation within the status vocabulary. The listing
// owner or an admin may set any valid status; the booker may only cancel.
func (s *ReservationService) UpdateStatus(ctx context.Context, userID, reservationID uint, status models.ReservationStatus, isAdmin bool) (*models.ReservationView, error) {
	if !models.ValidReservationStatus(status) {
		return nil, models.NewValidationError("invalid reservation status")
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	isOwner := reservation.Listing.UserID == userID
	isBooker := reservation.UserID == userID
	switch {
	case isOwner || isAdmin:
	case isBooker && status == models.ReservationStatusCancelled:
	default:
		return nil, models.NewUnauthorizedError("You cannot change this reservation's status")
	}

	if err := s.reservationRepo.UpdateStatus(ctx, reservationID, status); err != nil {
		return nil, err
	}
	return s.view(ctx, reservationID)
}
