package repository

import (
	"context"
	"errors"
	"time"

	"parlor/internal/models"

	"gorm.io/gorm"
)

// ReservationFilter narrows reservation list queries. AuthorID selects
// reservations made against listings owned by that user.
type ReservationFilter struct {
	UserID    uint
	ListingID uint
	AuthorID  uint
	Limit     int
	Offset    int
}

// Empty reports whether no filter dimension was set.
func (f ReservationFilter) Empty() bool {
	return f.UserID == 0 && f.ListingID == 0 && f.AuthorID == 0
}

// ReservationRepository defines the interface for reservation data operations
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id uint, status models.ReservationStatus) error
	Delete(ctx context.Context, id uint) error
	HasSlotConflict(ctx context.Context, listingID uint, employeeID *uint, date time.Time, timeSlot string) (bool, error)
}

type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

// Create inserts the reservation. A gorm.ErrDuplicatedKey on the payment
// intent unique index is passed through untranslated so callers can detect
// a concurrent reconciliation of the same checkout session.
func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Listing").
		Preload("Service").
		Preload("Employee").
		First(&reservation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Reservation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) GetByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).
		Where("payment_intent_id = ?", paymentIntentID).
		Preload("Listing").
		Preload("Service").
		Preload("Employee").
		First(&reservation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not reconciled yet
		}
		return nil, models.NewInternalError(err)
	}
	return &reservation, nil
}

func (r *reservationRepository) List(ctx context.Context, filter ReservationFilter) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if filter.UserID != 0 {
		query = query.Where("reservations.user_id = ?", filter.UserID)
	}
	if filter.ListingID != 0 {
		query = query.Where("reservations.listing_id = ?", filter.ListingID)
	}
	if filter.AuthorID != 0 {
		query = query.
			Joins("JOIN listings ON listings.id = reservations.listing_id").
			Where("listings.user_id = ?", filter.AuthorID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var reservations []models.Reservation
	if err := query.
		Preload("User").
		Preload("Listing").
		Preload("Service").
		Preload("Employee").
		Order("reservations.created_at DESC").
		Offset(filter.Offset).
		Find(&reservations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id uint, status models.ReservationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Reservation", id)
	}
	return nil
}

func (r *reservationRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Reservation{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// HasSlotConflict reports whether an active reservation already occupies the
// slot. With an employee the check is per-employee; without one it falls back
// to the whole listing.
func (r *reservationRepository) HasSlotConflict(ctx context.Context, listingID uint, employeeID *uint, date time.Time, timeSlot string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("listing_id = ? AND date = ? AND time_slot = ?", listingID, date, timeSlot).
		Where("status NOT IN ?", []models.ReservationStatus{
			models.ReservationStatusCancelled,
		})
	if employeeID != nil {
		query = query.Where("employee_id = ?", *employeeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
