// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"parlor/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data is generated.
type Options struct {
	Users        int
	Listings     int
	Reservations int
	Posts        int
}

// DefaultOptions returns a small but connected demo dataset.
func DefaultOptions() Options {
	return Options{Users: 12, Listings: 8, Reservations: 20, Posts: 30}
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, rand: rand.New(rand.NewSource(seed))}
}

var listingCategories = []string{"salon", "barbershop", "spa", "tattoo", "fitness", "photography"}

var timeSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:30", "17:00"}

// CreateUser persists a fake user. The password for every seeded account is
// "Password123!demo".
func (f *Factory) CreateUser() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!demo"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:         gofakeit.Username(),
		Email:            gofakeit.Email(),
		Password:         string(hashed),
		Bio:              gofakeit.Sentence(8),
		Avatar:           fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
		Location:         gofakeit.City(),
		SubscriptionTier: models.SubscriptionTierFree,
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateListing persists a listing with services, employees and store hours.
func (f *Factory) CreateListing(owner *models.User) (*models.Listing, error) {
	listing := &models.Listing{
		UserID:      owner.ID,
		Title:       gofakeit.Company(),
		Description: gofakeit.Paragraph(1, 3, 8, " "),
		CoverImage:  fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		GalleryImages: []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		},
		Category: listingCategories[f.rand.Intn(len(listingCategories))],
		Location: gofakeit.City(),
		Address:  gofakeit.Street(),
		ZipCode:  gofakeit.Zip(),
	}

	serviceCount := 2 + f.rand.Intn(3)
	for i := 0; i < serviceCount; i++ {
		listing.Services = append(listing.Services, models.ListingService{
			Name:     gofakeit.BuzzWord() + " " + gofakeit.HackerNoun(),
			Price:    float64(20+f.rand.Intn(18)*5) + 0.99,
			Category: listing.Category,
		})
	}
	employeeCount := 1 + f.rand.Intn(3)
	for i := 0; i < employeeCount; i++ {
		listing.Employees = append(listing.Employees, models.Employee{Name: gofakeit.Name()})
	}
	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		listing.StoreHours = append(listing.StoreHours, models.StoreHour{
			DayOfWeek: day,
			OpenTime:  "09:00",
			CloseTime: "18:00",
			Closed:    day == "Sunday",
		})
	}

	if err := f.db.Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// CreateReservation books a random future slot on the listing for the user.
func (f *Factory) CreateReservation(user *models.User, listing *models.Listing) (*models.Reservation, error) {
	if len(listing.Services) == 0 {
		return nil, fmt.Errorf("listing %d has no services", listing.ID)
	}
	svc := listing.Services[f.rand.Intn(len(listing.Services))]
	date := time.Now().AddDate(0, 0, 1+f.rand.Intn(30)).Truncate(24 * time.Hour)

	reservation := &models.Reservation{
		UserID:     user.ID,
		ListingID:  listing.ID,
		ServiceID:  &svc.ID,
		Date:       date,
		TimeSlot:   timeSlots[f.rand.Intn(len(timeSlots))],
		TotalPrice: svc.Price,
		Status:     models.ReservationStatusPending,
	}
	if len(listing.Employees) > 0 {
		emp := listing.Employees[f.rand.Intn(len(listing.Employees))]
		reservation.EmployeeID = &emp.ID
	}
	if err := f.db.Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

// CreatePost persists a fake post, occasionally tagged to a listing.
func (f *Factory) CreatePost(user *models.User, listings []*models.Listing) (*models.Post, error) {
	post := &models.Post{
		UserID:   user.ID,
		Content:  gofakeit.Paragraph(1, 2, 6, " "),
		Category: listingCategories[f.rand.Intn(len(listingCategories))],
	}
	if f.rand.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}
	if len(listings) > 0 && f.rand.Intn(2) == 0 {
		l := listings[f.rand.Intn(len(listings))]
		post.ListingID = &l.ID
	}
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Run populates the database with a connected demo dataset.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
		users = append(users, u)
	}

	listings := make([]*models.Listing, 0, opts.Listings)
	for i := 0; i < opts.Listings; i++ {
		owner := users[f.rand.Intn(len(users))]
		l, err := f.CreateListing(owner)
		if err != nil {
			return fmt.Errorf("seed listing: %w", err)
		}
		listings = append(listings, l)
	}

	for i := 0; i < opts.Reservations; i++ {
		user := users[f.rand.Intn(len(users))]
		listing := listings[f.rand.Intn(len(listings))]
		if _, err := f.CreateReservation(user, listing); err != nil {
			return fmt.Errorf("seed reservation: %w", err)
		}
	}

	for i := 0; i < opts.Posts; i++ {
		user := users[f.rand.Intn(len(users))]
		if _, err := f.CreatePost(user, listings); err != nil {
			return fmt.Errorf("seed post: %w", err)
		}
	}

	// Sprinkle follow edges; duplicates are skipped by the unique index.
	for i := 0; i < opts.Users*2; i++ {
		follower := users[f.rand.Intn(len(users))]
		followee := users[f.rand.Intn(len(users))]
		if follower.ID == followee.ID {
			continue
		}
		edge := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
		if err := db.Create(edge).Error; err != nil {
			log.Printf("skipping duplicate follow edge: %v", err)
		}
	}

	log.Printf("Seeded %d users, %d listings, %d reservations, %d posts",
		len(users), len(listings), opts.Reservations, opts.Posts)
	return nil
}
