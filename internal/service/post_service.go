package service

import (
	"context"
	"fmt"
	"strings"

	"parlor/internal/middleware"
	"parlor/internal/models"
	"parlor/internal/notifications"
	"parlor/internal/repository"
)

// PostInput is the create payload for a post.
type PostInput struct {
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	Category  string `json:"category"`
	ListingID *uint  `json:"listingId"`
}

// PostService provides post, like, bookmark and comment business logic.
type PostService struct {
	postRepo         repository.PostRepository
	listingRepo      repository.ListingRepository
	notificationRepo repository.NotificationRepository
	notifier         *notifications.Notifier
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	listingRepo repository.ListingRepository,
	notificationRepo repository.NotificationRepository,
	notifier *notifications.Notifier,
) *PostService {
	return &PostService{
		postRepo:         postRepo,
		listingRepo:      listingRepo,
		notificationRepo: notificationRepo,
		notifier:         notifier,
	}
}

// Create validates and inserts a post. A listing tag must reference an
// existing listing.
func (s *PostService) Create(ctx context.Context, userID uint, input *PostInput) (*models.Post, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	if input.ListingID != nil {
		if _, err := s.listingRepo.GetByID(ctx, *input.ListingID); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		UserID:    userID,
		Content:   strings.TrimSpace(input.Content),
		ImageURL:  input.ImageURL,
		Category:  input.Category,
		ListingID: input.ListingID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, userID)
}

// List returns posts matching the filter, newest first.
func (s *PostService) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, error) {
	return s.postRepo.List(ctx, filter)
}

// GetByID returns one post with viewer-relative like state.
func (s *PostService) GetByID(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID, viewerID)
}

// Delete removes a post. Owner or admin.
func (s *PostService) Delete(ctx context.Context, userID, postID uint, isAdmin bool) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID && !isAdmin {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// Like records a like and notifies the post owner. Liking an already-liked
// post is a no-op, as is liking your own post's notification.
func (s *PostService) Like(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	added, err := s.postRepo.Like(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if added && post.UserID != userID {
		s.notify(ctx, &models.Notification{
			UserID:  post.UserID,
			ActorID: userID,
			Type:    models.NotificationNewLike,
			Content: "Someone liked your post",
		})
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Unlike removes a like if present.
func (s *PostService) Unlike(ctx context.Context, userID, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}

// Bookmark records a bookmark. No notification; bookmarks are private.
func (s *PostService) Bookmark(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return err
	}
	_, err := s.postRepo.Bookmark(ctx, userID, postID)
	return err
}

// Unbookmark removes a bookmark if present.
func (s *PostService) Unbookmark(ctx context.Context, userID, postID uint) error {
	_, err := s.postRepo.Unbookmark(ctx, userID, postID)
	return err
}

// ListBookmarked returns the user's bookmarked posts.
func (s *PostService) ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	return s.postRepo.ListBookmarked(ctx, userID, limit, offset)
}

// Comment adds a comment and notifies the post owner.
func (s *PostService) Comment(ctx context.Context, userID, postID uint, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("content is required")
	}
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: strings.TrimSpace(content),
	}
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	if post.UserID != userID {
		s.notify(ctx, &models.Notification{
			UserID:  post.UserID,
			ActorID: userID,
			Type:    models.NotificationNewComment,
			Content: fmt.Sprintf("New comment on your post: %.80s", comment.Content),
		})
	}
	return comment, nil
}

// Comments returns a post's comments, oldest first.
func (s *PostService) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	return s.postRepo.ListComments(ctx, postID)
}

// notify stores and publishes a notification best-effort. A failed insert is
// logged, never surfaced; the primary mutation already committed.
func (s *PostService) notify(ctx context.Context, notification *models.Notification) {
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		middleware.Logger.WarnContext(ctx, "notification insert failed", "error", err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishNotification(ctx, notification); err != nil {
			middleware.Logger.WarnContext(ctx, "notification publish failed", "error", err)
		}
	}
}
