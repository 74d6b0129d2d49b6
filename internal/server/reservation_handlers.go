package server

import (
	"parlor/internal/models"
	"parlor/internal/repository"
	"parlor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReservation handles POST /api/reservations
func (s *Server) CreateReservation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.ReservationInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.reservationService.Create(c.Context(), userID, &input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetReservations handles GET /api/reservations?listingId=&userId=&authorId=
func (s *Server) GetReservations(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	p := parsePagination(c, 50)
	filter := repository.ReservationFilter{
		ListingID: uint(c.QueryInt("listingId", 0)),
		UserID:    uint(c.QueryInt("userId", 0)),
		AuthorID:  uint(c.QueryInt("authorId", 0)),
		Limit:     p.Limit,
		Offset:    p.Offset,
	}

	views, err := s.reservationService.List(c.Context(), userID, s.requesterIsAdmin(c, userID), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(views)
}

// UpdateReservationStatus handles PATCH /api/reservations/:id/status
func (s *Server) UpdateReservationStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	view, err := s.reservationService.UpdateStatus(
		c.Context(), userID, id, models.ReservationStatus(req.Status), s.requesterIsAdmin(c, userID))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// CancelReservation handles DELETE /api/reservations/:id
func (s *Server) CancelReservation(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.reservationService.Cancel(c.Context(), userID, id, s.requesterIsAdmin(c, userID)); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
