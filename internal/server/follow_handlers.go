package server

import (
	"parlor/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ToggleFollow handles POST /api/follow/:targetId?type=user|listing
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	targetID, err := s.parseID(c, "targetId")
	if err != nil {
		return nil
	}

	target := service.FollowTarget(c.Query("type", string(service.FollowTargetUser)))
	result, err := s.followService.Toggle(c.Context(), userID, targetID, target)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
