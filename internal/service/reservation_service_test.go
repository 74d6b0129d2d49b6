package service

import (
	"context"
	"testing"

	"parlor/internal/models"
	"parlor/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newReservationService(t *testing.T) (*ReservationService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewReservationService(
		db,
		repository.NewReservationRepository(db),
		repository.NewListingRepository(db),
		nil,
	)
	return svc, db
}

func reservationInputFor(listing *models.Listing) *ReservationInput {
	return &ReservationInput{
		ListingID: listing.ID,
		ServiceID: &listing.Services[0].ID,
		Date:      "2026-09-15",
		TimeSlot:  "10:00",
	}
}

func TestReservationCreateValidation(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)
	other := createTestListing(t, db, owner.ID)

	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Create(ctx, booker.ID, &ReservationInput{})
		assertValidationError(t, err)

		_, err = svc.Create(ctx, booker.ID, &ReservationInput{ListingID: listing.ID, TimeSlot: "10:00"})
		assertValidationError(t, err)
	})

	t.Run("bad date format", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.Date = "15/09/2026"
		_, err := svc.Create(ctx, booker.ID, input)
		assertValidationError(t, err)
	})

	t.Run("service from another listing", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.ServiceID = &other.Services[0].ID
		_, err := svc.Create(ctx, booker.ID, input)
		assertValidationError(t, err)
	})

	t.Run("employee from another listing", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.EmployeeID = &other.Employees[0].ID
		_, err := svc.Create(ctx, booker.ID, input)
		assertValidationError(t, err)
	})

	t.Run("price mismatch", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.TotalPrice = 9.99
		_, err := svc.Create(ctx, booker.ID, input)
		assertValidationError(t, err)
	})

	t.Run("no service requires a positive price", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.ServiceID = nil
		input.TotalPrice = 0
		_, err := svc.Create(ctx, booker.ID, input)
		assertValidationError(t, err)
	})

	t.Run("unknown listing", func(t *testing.T) {
		input := reservationInputFor(listing)
		input.ListingID = 9999
		_, err := svc.Create(ctx, booker.ID, input)
		assertAppErrorCode(t, err, "NOT_FOUND")
	})
}

func TestReservationCreateUsesStoredPrice(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	input := reservationInputFor(listing)
	input.TotalPrice = 0 // client omitted the price

	view, err := svc.Create(context.Background(), booker.ID, input)
	require.NoError(t, err)
	assert.Equal(t, 45.0, view.TotalPrice)
	assert.Equal(t, string(models.ReservationStatusPending), view.Status)
	assert.Equal(t, "2026-09-15", view.Date)
	assert.Equal(t, "10:00", view.TimeSlot)
}

func TestReservationCreateNotifiesOwner(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	_, err := svc.Create(context.Background(), booker.ID, reservationInputFor(listing))
	require.NoError(t, err)

	var notes []models.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationNewReservation, notes[0].Type)
	assert.Equal(t, booker.ID, notes[0].ActorID)
}

func TestReservationSelfBookingSkipsNotification(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	_, err := svc.Create(context.Background(), owner.ID, reservationInputFor(listing))
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReservationSlotConflict(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	rival := createTestUser(t, db, "rival")
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	ctx := context.Background()

	input := reservationInputFor(listing)
	input.EmployeeID = &listing.Employees[0].ID
	_, err := svc.Create(ctx, booker.ID, input)
	require.NoError(t, err)

	t.Run("same employee same slot conflicts", func(t *testing.T) {
		again := reservationInputFor(listing)
		again.EmployeeID = &listing.Employees[0].ID
		_, err := svc.Create(ctx, rival.ID, again)
		assertAppErrorCode(t, err, "CONFLICT")
	})

	t.Run("different employee is free", func(t *testing.T) {
		other := reservationInputFor(listing)
		other.EmployeeID = &listing.Employees[1].ID
		_, err := svc.Create(ctx, rival.ID, other)
		require.NoError(t, err)
	})

	t.Run("cancelled reservation frees the slot", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Reservation{}).
			Where("employee_id = ?", listing.Employees[0].ID).
			Update("status", models.ReservationStatusCancelled).Error)

		again := reservationInputFor(listing)
		again.EmployeeID = &listing.Employees[0].ID
		_, err := svc.Create(ctx, rival.ID, again)
		require.NoError(t, err)
	})
}

func TestReservationListScoping(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	listing := createTestListing(t, db, owner.ID)

	ctx := context.Background()
	_, err := svc.Create(ctx, booker.ID, reservationInputFor(listing))
	require.NoError(t, err)

	t.Run("empty filter rejected", func(t *testing.T) {
		_, err := svc.List(ctx, booker.ID, false, repository.ReservationFilter{})
		assertValidationError(t, err)
	})

	t.Run("booker lists own", func(t *testing.T) {
		views, err := svc.List(ctx, booker.ID, false, repository.ReservationFilter{UserID: booker.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, listing.ID, views[0].ListingID)
	})

	t.Run("owner lists by authorId", func(t *testing.T) {
		views, err := svc.List(ctx, owner.ID, false, repository.ReservationFilter{AuthorID: owner.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
	})

	t.Run("owner lists by listingId", func(t *testing.T) {
		views, err := svc.List(ctx, owner.ID, false, repository.ReservationFilter{ListingID: listing.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
	})

	t.Run("stranger cannot read someone else's", func(t *testing.T) {
		_, err := svc.List(ctx, stranger.ID, false, repository.ReservationFilter{UserID: booker.ID})
		assertAppErrorCode(t, err, "UNAUTHORIZED")

		_, err = svc.List(ctx, stranger.ID, false, repository.ReservationFilter{ListingID: listing.ID})
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("admin bypasses scoping", func(t *testing.T) {
		views, err := svc.List(ctx, stranger.ID, true, repository.ReservationFilter{UserID: booker.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
	})
}

func TestReservationUpdateStatus(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	listing := createTestListing(t, db, owner.ID)

	ctx := context.Background()
	created, err := svc.Create(ctx, booker.ID, reservationInputFor(listing))
	require.NoError(t, err)

	t.Run("invalid status rejected", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, owner.ID, created.ID, "paused", false)
		assertValidationError(t, err)
	})

	t.Run("stranger denied", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, stranger.ID, created.ID, models.ReservationStatusConfirmed, false)
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("booker may only cancel", func(t *testing.T) {
		_, err := svc.UpdateStatus(ctx, booker.ID, created.ID, models.ReservationStatusConfirmed, false)
		assertAppErrorCode(t, err, "UNAUTHORIZED")
	})

	t.Run("owner confirms", func(t *testing.T) {
		view, err := svc.UpdateStatus(ctx, owner.ID, created.ID, models.ReservationStatusConfirmed, false)
		require.NoError(t, err)
		assert.Equal(t, string(models.ReservationStatusConfirmed), view.Status)
	})

	t.Run("booker cancels", func(t *testing.T) {
		view, err := svc.UpdateStatus(ctx, booker.ID, created.ID, models.ReservationStatusCancelled, false)
		require.NoError(t, err)
		assert.Equal(t, string(models.ReservationStatusCancelled), view.Status)
	})
}

func TestReservationCancel(t *testing.T) {
	t.Parallel()
	svc, db := newReservationService(t)
	booker := createTestUser(t, db, "booker")
	owner := createTestUser(t, db, "owner")
	stranger := createTestUser(t, db, "stranger")
	listing := createTestListing(t, db, owner.ID)

	ctx := context.Background()
	created, err := svc.Create(ctx, booker.ID, reservationInputFor(listing))
	require.NoError(t, err)

	err = svc.Cancel(ctx, stranger.ID, created.ID, false)
	assertAppErrorCode(t, err, "UNAUTHORIZED")

	require.NoError(t, svc.Cancel(ctx, booker.ID, created.ID, false))

	err = svc.Cancel(ctx, booker.ID, created.ID, false)
	assertAppErrorCode(t, err, "NOT_FOUND")
}
