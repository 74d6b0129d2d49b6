package server

import (
	"strings"

	"parlor/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Bio      *string `json:"bio"`
		Avatar   *string `json:"avatar"`
		Location *string `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Avatar != nil {
		user.Avatar = strings.TrimSpace(*req.Avatar)
	}
	if req.Location != nil {
		user.Location = strings.TrimSpace(*req.Location)
	}

	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userRepo.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	followerIDs, err := s.followRepo.GetFollowerIDs(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	followingIDs, err := s.followRepo.GetFollowingIDs(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	followerCount, err := s.followRepo.CountFollowers(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	followingCount, err := s.followRepo.CountFollowing(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	viewerID := c.Locals("userID").(uint)
	isFollowing := false
	if viewerID != id {
		isFollowing, err = s.followRepo.IsFollowing(c.Context(), viewerID, id)
		if err != nil {
			return respondServiceError(c, err)
		}
	}

	return c.JSON(fiber.Map{
		"user":            user,
		"follower_ids":    followerIDs,
		"following_ids":   followingIDs,
		"follower_count":  followerCount,
		"following_count": followingCount,
		"is_following":    isFollowing,
	})
}

// GetFollowers handles GET /api/users/:id/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.followService.Followers(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toUserSummaries(users))
}

// GetFollowing handles GET /api/users/:id/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.followService.Following(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(toUserSummaries(users))
}

// GetUserListings handles GET /api/users/:id/listings
func (s *Server) GetUserListings(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	listings, err := s.listingRepo.GetByUserID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	views := make([]*models.ListingView, 0, len(listings))
	for i := range listings {
		views = append(views, models.ToListingView(&listings[i], nil))
	}
	return c.JSON(views)
}

func toUserSummaries(users []models.User) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, models.UserSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar})
	}
	return out
}
