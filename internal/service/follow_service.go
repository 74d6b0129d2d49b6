package service

import (
	"context"
	"errors"
	"fmt"

	"parlor/internal/cache"
	"parlor/internal/middleware"
	"parlor/internal/models"
	"parlor/internal/notifications"
	"parlor/internal/repository"

	"gorm.io/gorm"
)

// FollowTarget selects what a follow toggle points at.
type FollowTarget string

const (
	FollowTargetUser    FollowTarget = "user"
	FollowTargetListing FollowTarget = "listing"
)

// FollowResult is the target's updated follow state after a toggle.
type FollowResult struct {
	Following   bool   `json:"following"`
	FollowerIDs []uint `json:"follower_ids"`
}

// FollowService toggles follow edges and fans out the resulting
// notifications. It holds the db handle directly: the edge write and its
// notification inserts must commit in one transaction.
type FollowService struct {
	db         *gorm.DB
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   *notifications.Notifier
}

// NewFollowService returns a new FollowService.
func NewFollowService(
	db *gorm.DB,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier *notifications.Notifier,
) *FollowService {
	return &FollowService{
		db:         db,
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Toggle flips the follow edge from actorID to the target. A second call
// restores the original state.
func (s *FollowService) Toggle(ctx context.Context, actorID, targetID uint, target FollowTarget) (*FollowResult, error) {
	switch target {
	case FollowTargetUser:
		return s.toggleUser(ctx, actorID, targetID)
	case FollowTargetListing:
		return s.toggleListing(ctx, actorID, targetID)
	default:
		return nil, models.NewValidationError("type must be user or listing")
	}
}

func (s *FollowService) toggleUser(ctx context.Context, actorID, targetID uint) (*FollowResult, error) {
	if actorID == targetID {
		return nil, models.NewValidationError("Cannot follow yourself")
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	var following bool
	var created []models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", actorID, targetID).First(&edge).Error
		switch {
		case err == nil:
			// Unfollow: remove the edge, emit nothing.
			return tx.Delete(&edge).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		following = true
		if err := tx.Create(&models.Follow{FollowerID: actorID, FolloweeID: targetID}).Error; err != nil {
			return err
		}

		follower := models.Notification{
			UserID:  targetID,
			ActorID: actorID,
			Type:    models.NotificationNewFollower,
			Content: fmt.Sprintf("%s started following you", actor.Username),
		}
		if err := tx.Create(&follower).Error; err != nil {
			return err
		}
		created = append(created, follower)

		// Mutual transition: the reverse edge already exists.
		var reverse int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", targetID, actorID).
			Count(&reverse).Error; err != nil {
			return err
		}
		if reverse == 0 {
			return nil
		}

		// MUTUAL_FOLLOW fires at most once per (user, actor) pair, ever.
		// Repeated follow/unfollow cycles must not re-announce it.
		for _, pair := range [][2]uint{{targetID, actorID}, {actorID, targetID}} {
			var sent int64
			if err := tx.Model(&models.Notification{}).
				Where("user_id = ? AND actor_id = ? AND type = ?", pair[0], pair[1], models.NotificationMutualFollow).
				Count(&sent).Error; err != nil {
				return err
			}
			if sent > 0 {
				continue
			}
			mutual := models.Notification{
				UserID:  pair[0],
				ActorID: pair[1],
				Type:    models.NotificationMutualFollow,
				Content: "You are now following each other",
			}
			if err := tx.Create(&mutual).Error; err != nil {
				return err
			}
			created = append(created, mutual)
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	s.publishAll(ctx, created)

	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Following: following, FollowerIDs: followerIDs}, nil
}

func (s *FollowService) toggleListing(ctx context.Context, actorID, listingID uint) (*FollowResult, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Listing", listingID)
		}
		return nil, models.NewInternalError(err)
	}

	var following bool
	var created []models.Notification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var edge models.ListingFollow
		err := tx.Where("user_id = ? AND listing_id = ?", actorID, listingID).First(&edge).Error
		switch {
		case err == nil:
			return tx.Delete(&edge).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		following = true
		if err := tx.Create(&models.ListingFollow{UserID: actorID, ListingID: listingID}).Error; err != nil {
			return err
		}

		if listing.UserID == actorID {
			return nil
		}
		notification := models.Notification{
			UserID:  listing.UserID,
			ActorID: actorID,
			Type:    models.NotificationListingFollow,
			Content: fmt.Sprintf("%s started following %s", actor.Username, listing.Title),
		}
		if err := tx.Create(&notification).Error; err != nil {
			return err
		}
		created = append(created, notification)
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	s.publishAll(ctx, created)
	cache.InvalidateListing(ctx, listingID)

	followerIDs, err := s.followRepo.GetListingFollowerIDs(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Following: following, FollowerIDs: followerIDs}, nil
}

// publishAll pushes committed notifications over redis best-effort.
func (s *FollowService) publishAll(ctx context.Context, created []models.Notification) {
	if s.notifier == nil {
		return
	}
	for i := range created {
		if err := s.notifier.PublishNotification(ctx, &created[i]); err != nil {
			middleware.Logger.WarnContext(ctx, "notification publish failed", "error", err)
		}
	}
}

// Followers returns the users following the given user.
func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

// Following returns the users the given user follows.
func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}
