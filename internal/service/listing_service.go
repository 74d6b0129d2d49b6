// Package service contains the business logic layer.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"parlor/internal/cache"
	"parlor/internal/models"
	"parlor/internal/repository"
	"parlor/internal/validation"
)

// ServiceInput is a submitted bookable service.
type ServiceInput struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// StoreHourInput is a submitted opening-hours row.
type StoreHourInput struct {
	DayOfWeek string `json:"day_of_week"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Closed    bool   `json:"closed"`
}

// ServiceList decodes from a native JSON array or from a JSON-encoded string
// containing one. Some clients double-encode multipart form fields.
type ServiceList []ServiceInput

func (l *ServiceList) UnmarshalJSON(data []byte) error {
	data, err := unwrapEncodedArray(data)
	if err != nil {
		return err
	}
	if data == nil {
		*l = nil
		return nil
	}
	var items []ServiceInput
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// StoreHourList decodes from a native array or a JSON-encoded string.
type StoreHourList []StoreHourInput

func (l *StoreHourList) UnmarshalJSON(data []byte) error {
	data, err := unwrapEncodedArray(data)
	if err != nil {
		return err
	}
	if data == nil {
		*l = nil
		return nil
	}
	var items []StoreHourInput
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// EmployeeList decodes from an array of plain name strings or objects with a
// name field.
type EmployeeList []string

func (l *EmployeeList) UnmarshalJSON(data []byte) error {
	data, err := unwrapEncodedArray(data)
	if err != nil {
		return err
	}
	if data == nil {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var name string
			if err := json.Unmarshal(item, &name); err != nil {
				return err
			}
			names = append(names, name)
			continue
		}
		var obj struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return err
		}
		names = append(names, obj.Name)
	}
	*l = names
	return nil
}

// unwrapEncodedArray peels one layer of string encoding off a JSON value.
// Returns nil data for an empty or whitespace-only encoded string.
func unwrapEncodedArray(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	if data[0] != '"' {
		return data, nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	return []byte(raw), nil
}

// ListingInput is the create/update payload for a listing.
type ListingInput struct {
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	ImageSrc      string        `json:"imageSrc"`
	Category      string        `json:"category"`
	Location      string        `json:"location"`
	Address       string        `json:"address"`
	ZipCode       string        `json:"zipCode"`
	GalleryImages []string      `json:"galleryImages"`
	Services      ServiceList   `json:"services"`
	StoreHours    StoreHourList `json:"storeHours"`
	Employees     EmployeeList  `json:"employees"`
}

// missingFields returns the names of required fields that are absent.
func (in *ListingInput) missingFields() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("title", in.Title)
	check("description", in.Description)
	check("imageSrc", in.ImageSrc)
	check("category", in.Category)
	check("location", in.Location)
	check("address", in.Address)
	check("zipCode", in.ZipCode)
	if len(in.Services) == 0 {
		missing = append(missing, "services")
	}
	if len(in.StoreHours) == 0 {
		missing = append(missing, "storeHours")
	}
	if len(in.GalleryImages) == 0 {
		missing = append(missing, "galleryImages")
	}
	return missing
}

// ListingService provides listing business logic.
type ListingService struct {
	listingRepo repository.ListingRepository
	followRepo  repository.FollowRepository
}

// NewListingService returns a new ListingService.
func NewListingService(listingRepo repository.ListingRepository, followRepo repository.FollowRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		followRepo:  followRepo,
	}
}

// Create validates and inserts a listing with all of its children.
func (s *ListingService) Create(ctx context.Context, userID uint, input *ListingInput) (*models.ListingView, error) {
	if missing := input.missingFields(); len(missing) > 0 {
		return nil, models.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	for _, svc := range input.Services {
		if strings.TrimSpace(svc.Name) == "" {
			return nil, models.NewValidationError("every service needs a name")
		}
		if svc.Price < 0 {
			return nil, models.NewValidationError("service price cannot be negative")
		}
	}

	listing := input.toModel()
	listing.UserID = userID
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return models.ToListingView(listing, nil), nil
}

// GetByID returns the safe view of a listing with its follower ids. The
// listing entity is read cache-aside; follower ids are always fresh.
func (s *ListingService) GetByID(ctx context.Context, id uint) (*models.ListingView, error) {
	var listing models.Listing
	err := cache.Aside(ctx, cache.ListingKey(id), &listing, cache.ListingTTL, func() error {
		fetched, err := s.listingRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		listing = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	followerIDs, err := s.followRepo.GetListingFollowerIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ToListingView(&listing, followerIDs), nil
}

// List returns safe views matching the filter.
func (s *ListingService) List(ctx context.Context, filter repository.ListingFilter) ([]*models.ListingView, error) {
	listings, err := s.listingRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]*models.ListingView, 0, len(listings))
	for i := range listings {
		followerIDs, err := s.followRepo.GetListingFollowerIDs(ctx, listings[i].ID)
		if err != nil {
			return nil, err
		}
		views = append(views, models.ToListingView(&listings[i], followerIDs))
	}
	return views, nil
}

// Update replaces a listing and its children wholesale. Owner only.
func (s *ListingService) Update(ctx context.Context, userID, listingID uint, input *ListingInput) (*models.ListingView, error) {
	existing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, models.NewUnauthorizedError("You can only edit your own listings")
	}
	if missing := input.missingFields(); len(missing) > 0 {
		return nil, models.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}

	updated := input.toModel()
	updated.ID = listingID
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	if err := s.listingRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, listingID)
}

// Delete removes a listing. Owner or admin.
func (s *ListingService) Delete(ctx context.Context, userID, listingID uint, isAdmin bool) error {
	existing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if existing.UserID != userID && !isAdmin {
		return models.NewUnauthorizedError("You can only delete your own listings")
	}
	return s.listingRepo.Delete(ctx, listingID)
}

func (in *ListingInput) toModel() *models.Listing {
	listing := &models.Listing{
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		CoverImage:    strings.TrimSpace(in.ImageSrc),
		GalleryImages: in.GalleryImages,
		Category:      strings.TrimSpace(in.Category),
		Location:      strings.TrimSpace(in.Location),
		Address:       strings.TrimSpace(in.Address),
		ZipCode:       strings.TrimSpace(in.ZipCode),
	}
	for _, svc := range in.Services {
		listing.Services = append(listing.Services, models.ListingService{
			Name:     strings.TrimSpace(svc.Name),
			Price:    svc.Price,
			Category: strings.TrimSpace(svc.Category),
		})
	}
	for _, name := range validation.CleanEmployeeNames(in.Employees) {
		listing.Employees = append(listing.Employees, models.Employee{Name: name})
	}
	for _, h := range in.StoreHours {
		listing.StoreHours = append(listing.StoreHours, models.StoreHour{
			DayOfWeek: h.DayOfWeek,
			OpenTime:  h.OpenTime,
			CloseTime: h.CloseTime,
			Closed:    h.Closed,
		})
	}
	return listing
}
