package server

import (
	"bailanysta/internal/models"
	"bailanysta/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		AuthorID: userID,
		Text:     req.Text,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	feed, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		AuthorUsername: c.Query("author"),
		ViewerID:       s.optionalUserID(c),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(feed)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id, s.optionalUserID(c))
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:username/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	feed, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		AuthorUsername: c.Params("username"),
		ViewerID:       s.optionalUserID(c),
		Limit:          page.Limit,
		Offset:         page.Offset,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(feed)
}

// UpdatePost handles PATCH /api/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		EditorID: currentUserID(c),
		PostID:   postID,
		Text:     req.Text,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), postID, currentUserID(c)); err != nil {
		return models.RespondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles POST /api/posts/:id/like. Liking an already-liked post
// is a no-op.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if likeErr := s.postService.LikePost(c.Context(), userID, postID); likeErr != nil {
		return models.RespondError(c, likeErr)
	}

	post, err := s.postService.GetPost(c.Context(), postID, userID)
	if err != nil {
		return models.RespondError(c, err)
	}
	return c.JSON(post)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if unlikeErr := s.postService.UnlikePost(c.Context(), userID, postID); unlikeErr != nil {
		return models.RespondError(c, unlikeErr)
	}

	post, err := s.postService.GetPost(c.Context(), postID, userID)
	if err != nil {
		// Unliking a post that no longer exists is a no-op, not an error.
		if models.IsNotFound(err) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return models.RespondError(c, err)
	}
	return c.JSON(post)
}

// RepostPost handles POST /api/posts/:id/repost
func (s *Server) RepostPost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	repost, repostErr := s.postService.RepostPost(c.Context(), userID, postID)
	if repostErr != nil {
		return models.RespondError(c, repostErr)
	}

	return c.Status(fiber.StatusCreated).JSON(repost)
}

// GetPublicFeed handles GET /api/feed/public
func (s *Server) GetPublicFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	feed, err := s.postService.PublicFeed(c.Context(), service.FeedInput{
		ViewerID: s.optionalUserID(c),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(feed)
}

// GetFollowingFeed handles GET /api/feed/following
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	feed, err := s.postService.FollowingFeed(c.Context(), service.FeedInput{
		ViewerID: currentUserID(c),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(feed)
}

// SearchPosts handles GET /api/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	page := parsePagination(c, defaultPageLimit)

	feed, err := s.postService.SearchPosts(c.Context(), service.SearchInput{
		Query:    c.Query("q"),
		ViewerID: s.optionalUserID(c),
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		return models.RespondError(c, err)
	}

	return c.JSON(feed)
}
