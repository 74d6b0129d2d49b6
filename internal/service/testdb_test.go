package service

import (
	"errors"
	"testing"

	"parlor/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database migrated with every entity.
// TranslateError is on so unique violations surface as gorm.ErrDuplicatedKey,
// matching the postgres configuration.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A second pooled connection to :memory: would see a fresh empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ListingService{},
		&models.Employee{},
		&models.StoreHour{},
		&models.Reservation{},
		&models.Notification{},
		&models.Follow{},
		&models.ListingFollow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// testEnv bundles the handles a service test needs beyond the service itself.
type testEnv struct {
	db *gorm.DB
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:         username,
		Email:            username + "@example.com",
		Password:         "hashed",
		SubscriptionTier: models.SubscriptionTierFree,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestListing(t *testing.T, db *gorm.DB, ownerID uint) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		UserID:      ownerID,
		Title:       "Fade Factory",
		Description: "Cuts and colors",
		CoverImage:  "https://example.com/cover.jpg",
		Category:    "barbershop",
		Location:    "Oakland",
		Address:     "12 Grand Ave",
		ZipCode:     "94610",
		Services: []models.ListingService{
			{Name: "Haircut", Price: 45, Category: "hair"},
			{Name: "Beard Trim", Price: 20, Category: "hair"},
		},
		Employees: []models.Employee{
			{Name: "Sam"},
			{Name: "Riley"},
		},
		StoreHours: []models.StoreHour{
			{DayOfWeek: "Monday", OpenTime: "09:00", CloseTime: "18:00"},
		},
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return listing
}

// assertAppErrorCode fails unless err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError %s, got %v", code, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%s)", code, appErr.Code, appErr.Message)
	}
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}
