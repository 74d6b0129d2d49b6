package server

import (
	"parlor/internal/models"
	"parlor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCheckout handles POST /api/checkout
func (s *Server) CreateCheckout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.ReservationInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.checkoutService.CreateCheckoutSession(c.Context(), userID, &input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// VerifyCheckout handles GET /api/checkout/verify?session_id=
func (s *Server) VerifyCheckout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	sessionID := c.Query("session_id")

	result, err := s.checkoutService.VerifyCheckoutSession(c.Context(), userID, sessionID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{
		"success":    true,
		"processing": result.Processing(),
	}
	if result.Reservation != nil {
		resp["reservation"] = result.Reservation
	} else {
		resp["reservation"] = result.Pending
	}
	return c.JSON(resp)
}

// CreateSubscriptionCheckout handles POST /api/subscriptions/checkout
func (s *Server) CreateSubscriptionCheckout(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Tier string `json:"tier"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.subscriptionService.CreateSession(c.Context(), userID, req.Tier)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// VerifySubscription handles GET /api/subscriptions/verify?session_id=
func (s *Server) VerifySubscription(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	sessionID := c.Query("session_id")

	user, err := s.subscriptionService.Verify(c.Context(), userID, sessionID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}
