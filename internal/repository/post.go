package repository

import (
	"context"
	"errors"

	"parlor/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows post list queries.
type PostFilter struct {
	UserID    uint
	Category  string
	ListingID uint
	Limit     int
	Offset    int
	// ViewerID, when set, computes the Liked flag per post.
	ViewerID uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, error)
	Delete(ctx context.Context, id uint) error

	Like(ctx context.Context, userID, postID uint) (added bool, err error)
	Unlike(ctx context.Context, userID, postID uint) (removed bool, err error)
	Bookmark(ctx context.Context, userID, postID uint) (added bool, err error)
	Unbookmark(ctx context.Context, userID, postID uint) (removed bool, err error)
	ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error)

	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withCounts decorates a post query with computed like/comment counts and the
// viewer's liked flag.
func (r *postRepository) withCounts(query *gorm.DB, viewerID uint) *gorm.DB {
	return query.
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) AS comments_count,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) > 0 AS liked`,
			viewerID)
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	query := r.withCounts(r.db.WithContext(ctx).Model(&models.Post{}), viewerID)
	if err := query.
		Preload("User").
		Where("posts.id = ?", id).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := r.withCounts(r.db.WithContext(ctx).Model(&models.Post{}), filter.ViewerID)
	if filter.UserID != 0 {
		query = query.Where("posts.user_id = ?", filter.UserID)
	}
	if filter.Category != "" {
		query = query.Where("posts.category = ?", filter.Category)
	}
	if filter.ListingID != 0 {
		query = query.Where("posts.listing_id = ?", filter.ListingID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var posts []models.Post
	if err := query.
		Preload("User").
		Order("posts.created_at DESC").
		Offset(filter.Offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) (bool, error) {
	like := models.Like{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(&like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil // Already liked
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) Bookmark(ctx context.Context, userID, postID uint) (bool, error) {
	bookmark := models.Bookmark{UserID: userID, PostID: postID}
	if err := r.db.WithContext(ctx).Create(&bookmark).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *postRepository) Unbookmark(ctx context.Context, userID, postID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Bookmark{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *postRepository) ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]models.Post, error) {
	query := r.withCounts(r.db.WithContext(ctx).Model(&models.Post{}), userID).
		Joins("JOIN bookmarks b ON b.post_id = posts.id").
		Where("b.user_id = ?", userID)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var posts []models.Post
	if err := query.
		Preload("User").
		Order("b.created_at DESC").
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
