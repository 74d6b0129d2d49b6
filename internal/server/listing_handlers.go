package server

import (
	"parlor/internal/models"
	"parlor/internal/repository"
	"parlor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateListing handles POST /api/listings
func (s *Server) CreateListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.ListingInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.listingService.Create(c.Context(), userID, &input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetListings handles GET /api/listings
func (s *Server) GetListings(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	filter := repository.ListingFilter{
		UserID:   uint(c.QueryInt("userId", 0)),
		Category: c.Query("category"),
		Location: c.Query("location"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}

	views, err := s.listingService.List(c.Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// GetListing handles GET /api/listings/:id
func (s *Server) GetListing(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.listingService.GetByID(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Personalize for a logged-in viewer; anonymous browsing skips this.
	if viewerID, ok := s.optionalUserID(c); ok {
		following, err := s.followRepo.IsFollowingListing(c.Context(), viewerID, id)
		if err != nil {
			return respondServiceError(c, err)
		}
		view.Following = following
	}
	return c.JSON(view)
}

// UpdateListing handles PUT /api/listings/:id
func (s *Server) UpdateListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.ListingInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.listingService.Update(c.Context(), userID, id, &input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// DeleteListing handles DELETE /api/listings/:id
func (s *Server) DeleteListing(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.listingService.Delete(c.Context(), userID, id, s.requesterIsAdmin(c, userID)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
