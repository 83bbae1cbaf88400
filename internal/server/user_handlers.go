package server

import (
	"bailanysta/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:username
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(profile)
}

// FollowUser handles POST /api/users/:username/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	if err := s.userService.Follow(c.Context(), currentUserID(c), c.Params("username")); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnfollowUser handles DELETE /api/users/:username/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	if err := s.userService.Unfollow(c.Context(), currentUserID(c), c.Params("username")); err != nil {
		return models.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
