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

func newFollowService(t *testing.T) (*FollowService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewFollowService(
		db,
		repository.NewFollowRepository(db),
		repository.NewUserRepository(db),
		nil,
	)
	return svc, db
}

func notificationCount(t *testing.T, db *gorm.DB, userID uint, typ models.NotificationType) int64 {
	t.Helper()
	var count int64
	err := db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestFollowToggleUser(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	ctx := context.Background()

	result, err := svc.Toggle(ctx, alice.ID, bob.ID, FollowTargetUser)
	require.NoError(t, err)
	assert.True(t, result.Following)
	assert.Equal(t, []uint{alice.ID}, result.FollowerIDs)
	assert.Equal(t, int64(1), notificationCount(t, db, bob.ID, models.NotificationNewFollower))

	// Toggling again unfollows and emits nothing new.
	result, err = svc.Toggle(ctx, alice.ID, bob.ID, FollowTargetUser)
	require.NoError(t, err)
	assert.False(t, result.Following)
	assert.Empty(t, result.FollowerIDs)
	assert.Equal(t, int64(1), notificationCount(t, db, bob.ID, models.NotificationNewFollower))
}

func TestFollowToggleUserValidation(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	alice := createTestUser(t, db, "alice")

	ctx := context.Background()

	_, err := svc.Toggle(ctx, alice.ID, alice.ID, FollowTargetUser)
	assertValidationError(t, err)

	_, err = svc.Toggle(ctx, alice.ID, 9999, FollowTargetUser)
	assertAppErrorCode(t, err, "NOT_FOUND")

	_, err = svc.Toggle(ctx, alice.ID, alice.ID+1, "group")
	assertValidationError(t, err)
}

func TestMutualFollowAnnouncedOnce(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	ctx := context.Background()

	_, err := svc.Toggle(ctx, alice.ID, bob.ID, FollowTargetUser)
	require.NoError(t, err)
	assert.Zero(t, notificationCount(t, db, alice.ID, models.NotificationMutualFollow))

	// Bob follows back; both sides get the mutual announcement.
	_, err = svc.Toggle(ctx, bob.ID, alice.ID, FollowTargetUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), notificationCount(t, db, alice.ID, models.NotificationMutualFollow))
	assert.Equal(t, int64(1), notificationCount(t, db, bob.ID, models.NotificationMutualFollow))

	// Unfollow and refollow must not re-announce.
	_, err = svc.Toggle(ctx, bob.ID, alice.ID, FollowTargetUser)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, bob.ID, alice.ID, FollowTargetUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), notificationCount(t, db, alice.ID, models.NotificationMutualFollow))
	assert.Equal(t, int64(1), notificationCount(t, db, bob.ID, models.NotificationMutualFollow))
}

func TestFollowToggleListing(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	fan := createTestUser(t, db, "fan")
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	ctx := context.Background()

	result, err := svc.Toggle(ctx, fan.ID, listing.ID, FollowTargetListing)
	require.NoError(t, err)
	assert.True(t, result.Following)
	assert.Equal(t, []uint{fan.ID}, result.FollowerIDs)
	assert.Equal(t, int64(1), notificationCount(t, db, owner.ID, models.NotificationListingFollow))

	result, err = svc.Toggle(ctx, fan.ID, listing.ID, FollowTargetListing)
	require.NoError(t, err)
	assert.False(t, result.Following)
	assert.Empty(t, result.FollowerIDs)
}

func TestFollowOwnListingSkipsNotification(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	owner := createTestUser(t, db, "owner")
	listing := createTestListing(t, db, owner.ID)

	result, err := svc.Toggle(context.Background(), owner.ID, listing.ID, FollowTargetListing)
	require.NoError(t, err)
	assert.True(t, result.Following)
	assert.Zero(t, notificationCount(t, db, owner.ID, models.NotificationListingFollow))
}

func TestFollowToggleListingNotFound(t *testing.T) {
	t.Parallel()
	svc, db := newFollowService(t)
	fan := createTestUser(t, db, "fan")

	_, err := svc.Toggle(context.Background(), fan.ID, 9999, FollowTargetListing)
	assertAppErrorCode(t, err, "NOT_FOUND")
}
