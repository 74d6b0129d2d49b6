package repository

import (
	"context"
	"errors"

	"parlor/internal/cache"
	"parlor/internal/models"

	"gorm.io/gorm"
)

// ListingFilter narrows listing list queries.
type ListingFilter struct {
	UserID   uint
	Category string
	Location string
	Limit    int
	Offset   int
}

// ListingRepository defines the interface for listing data operations
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uint) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create inserts the listing and all of its children in one transaction.
// GORM cascades the associations from the parent struct.
func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Preload("Employees").
		Preload("StoreHours").
		First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &listing, nil
}

func (r *listingRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Services").
		Preload("Employees").
		Preload("StoreHours").
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).Model(&models.Listing{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Location != "" {
		query = query.Where("location = ?", filter.Location)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var listings []models.Listing
	if err := query.
		Preload("Services").
		Preload("Employees").
		Preload("StoreHours").
		Order("created_at DESC").
		Offset(filter.Offset).
		Find(&listings).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return listings, nil
}

// Update replaces the listing and its child collections wholesale. Children
// are keyed by the parent, so a full replace keeps the stored set exactly
// equal to the submitted one.
func (r *listingRepository) Update(ctx context.Context, listing *models.Listing) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.ListingService{}, &models.Employee{}, &models.StoreHour{}} {
			if err := tx.Where("listing_id = ?", listing.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		// Zero child ids so they insert fresh instead of colliding with
		// the rows just deleted.
		for i := range listing.Services {
			listing.Services[i].ID = 0
			listing.Services[i].ListingID = listing.ID
		}
		for i := range listing.Employees {
			listing.Employees[i].ID = 0
			listing.Employees[i].ListingID = listing.ID
		}
		for i := range listing.StoreHours {
			listing.StoreHours[i].ID = 0
			listing.StoreHours[i].ListingID = listing.ID
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(listing).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, listing.ID)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Listing{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateListing(ctx, id)
	return nil
}
